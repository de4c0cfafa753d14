package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything skyward reads from its config file.
type Config struct {
	APIKey          string
	APODURL         string
	ImagesURL       string
	CacheDir        string
	LogFile         string
	LogLevel        string
	RequestInterval time.Duration
	GalleryCount    int
}

// APIKeyEnv overrides api_key when set.
const APIKeyEnv = "NASA_API_KEY"

const (
	defaultConfigPath      = "~/.config/skyward/config.toml"
	defaultCacheDir        = "~/.cache/skyward"
	defaultLogFile         = "~/.local/share/skyward/skyward.log"
	defaultLogLevel        = "INFO"
	defaultAPIKey          = "DEMO_KEY"
	defaultRequestInterval = 250 * time.Millisecond
	defaultGalleryCount    = 10
	maxGalleryCount        = 100
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIKey:          defaultAPIKey,
		CacheDir:        mustExpand(defaultCacheDir),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
		RequestInterval: defaultRequestInterval,
		GalleryCount:    defaultGalleryCount,
	}
}

// Load locates and parses the skyward config, falling back to defaults when
// missing. NASA_API_KEY wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIKey            string `toml:"api_key"`
		APODURL           string `toml:"apod_url"`
		ImagesURL         string `toml:"images_url"`
		CacheDir          string `toml:"cache_dir"`
		LogFile           string `toml:"log_file"`
		LogLevel          string `toml:"log_level"`
		RequestIntervalMS int    `toml:"request_interval_ms"`
		GalleryCount      int    `toml:"gallery_count"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if key := strings.TrimSpace(raw.APIKey); key != "" {
		cfg.APIKey = key
	}
	cfg.APODURL = strings.TrimSpace(raw.APODURL)
	cfg.ImagesURL = strings.TrimSpace(raw.ImagesURL)
	if dir := strings.TrimSpace(raw.CacheDir); dir != "" {
		cfg.CacheDir = mustExpand(dir)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToUpper(level)
	}
	if raw.RequestIntervalMS > 0 {
		cfg.RequestInterval = time.Duration(raw.RequestIntervalMS) * time.Millisecond
	}
	cfg.GalleryCount = ClampCount(raw.GalleryCount)

	applyEnv(&cfg)
	return cfg, nil
}

// ClampCount bounds a gallery size to what the APOD API accepts, using the
// default for non-positive values.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return defaultGalleryCount
	case n > maxGalleryCount:
		return maxGalleryCount
	default:
		return n
	}
}

// UsingDemoKey reports whether requests will run against the shared demo quota.
func (c Config) UsingDemoKey() bool {
	return c.APIKey == "" || c.APIKey == defaultAPIKey
}

func applyEnv(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.APIKey = key
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
