package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != defaultAPIKey || !cfg.UsingDemoKey() {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, defaultAPIKey)
	}
	wantCache, err := expandPath(defaultCacheDir)
	if err != nil {
		t.Fatalf("expandPath(defaultCacheDir) returned error: %v", err)
	}
	if cfg.CacheDir != wantCache {
		t.Fatalf("CacheDir = %q, want %q", cfg.CacheDir, wantCache)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.RequestInterval != defaultRequestInterval || cfg.GalleryCount != defaultGalleryCount {
		t.Fatalf("cfg = %#v, want default interval and gallery count", cfg)
	}
	if cfg.APODURL != "" || cfg.ImagesURL != "" {
		t.Fatalf("endpoints = %q %q, want empty so the client picks its defaults", cfg.APODURL, cfg.ImagesURL)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(APIKeyEnv, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_key = "  abc123  "
apod_url = " https://apod.example/apod "
images_url = "https://images.example"
cache_dir = "  ~/.sky/cache  "
log_file = "~/.sky/sky.log"
log_level = "debug"
request_interval_ms = 1500
gallery_count = 250
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "abc123" || cfg.UsingDemoKey() {
		t.Fatalf("APIKey = %q, want abc123", cfg.APIKey)
	}
	if cfg.APODURL != "https://apod.example/apod" || cfg.ImagesURL != "https://images.example" {
		t.Fatalf("endpoints = %q %q", cfg.APODURL, cfg.ImagesURL)
	}
	if cfg.CacheDir != filepath.Join(home, ".sky/cache") {
		t.Fatalf("CacheDir = %q, want it under HOME", cfg.CacheDir)
	}
	if cfg.LogFile != filepath.Join(home, ".sky/sky.log") {
		t.Fatalf("LogFile = %q, want it under HOME", cfg.LogFile)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.RequestInterval != 1500*time.Millisecond {
		t.Fatalf("RequestInterval = %v, want 1.5s", cfg.RequestInterval)
	}
	if cfg.GalleryCount != maxGalleryCount {
		t.Fatalf("GalleryCount = %d, want clamp to %d", cfg.GalleryCount, maxGalleryCount)
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(APIKeyEnv, " from-env ")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = "from-file"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want from-env", cfg.APIKey)
	}

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want from-env without a config file", cfg.APIKey)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(APIKeyEnv, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_key = "   "
cache_dir = ""
log_level = ""
request_interval_ms = -5
gallery_count = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("cfg = %#v, want defaults %#v", cfg, want)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_key = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestClampCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, defaultGalleryCount},
		{0, defaultGalleryCount},
		{1, 1},
		{42, 42},
		{maxGalleryCount, maxGalleryCount},
		{maxGalleryCount + 1, maxGalleryCount},
	}
	for _, tt := range tests {
		if got := ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
