package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/config"
	"github.com/five82/skyward/internal/logging"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/prefs"
	"github.com/five82/skyward/internal/query"
	"github.com/five82/skyward/internal/ui"
)

// Options configure the skyward application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/skyward/prefs.toml

	// Print selects headless mode: "today", "gallery" or "search". Empty
	// starts the TUI.
	Print string
	Date  string
	Count int // zero uses gallery_count from config
	Query string
	HD    bool
	Out   io.Writer // defaults to os.Stdout
}

// Run boots skyward until the context is cancelled, the user quits, or a
// headless print finishes.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		// The log file is a convenience; run without it.
		logger = logging.Discard()
	} else {
		defer func() { _ = closer.Close() }()
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := nasa.NewClient(nasa.Options{
		APIKey:          cfg.APIKey,
		APODURL:         cfg.APODURL,
		ImagesURL:       cfg.ImagesURL,
		RequestInterval: cfg.RequestInterval,
	})
	if err != nil {
		return fmt.Errorf("init nasa client: %w", err)
	}

	cache, err := assets.OpenCache(cfg.CacheDir)
	if err != nil {
		// Usually another skyward holds the database lock.
		logger.Warn("asset cache unavailable, using memory only", "dir", cfg.CacheDir, "error", err)
		cache, _ = assets.OpenCache("")
	}
	defer func() { _ = cache.Close() }()

	facade := query.New(client, cache, logger)
	logger.Info("skyward starting",
		"demo_key", cfg.UsingDemoKey(),
		"cache_dir", cfg.CacheDir,
		"cached_assets", cache.Len(),
		"headless", opts.Print != "",
	)

	if opts.Print != "" {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		count := opts.Count
		if count == 0 {
			count = cfg.GalleryCount
		}
		return Print(ctx, facade, PrintOptions{
			Mode:  opts.Print,
			Date:  opts.Date,
			Count: count,
			Query: opts.Query,
			HD:    opts.HD || userPrefs.PreferHD,
		}, out)
	}

	return ui.Run(ui.Options{
		Context:      ctx,
		Facade:       facade,
		Logger:       logger,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		LogPath:      cfg.LogFile,
		GalleryCount: cfg.GalleryCount,
		DemoKey:      cfg.UsingDemoKey(),
	})
}
