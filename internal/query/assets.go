package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/nasa"
)

const prefetchLimit = 4

// ResolveDisplayURL returns the URL an item should be displayed with, or ""
// when it has nothing displayable. item is a nasa.Picture or nasa.SearchItem;
// any other value yields "".
func (f *Facade) ResolveDisplayURL(ctx context.Context, item any, preferHD bool) string {
	switch it := item.(type) {
	case nasa.Picture:
		return pictureURL(it, preferHD)
	case *nasa.Picture:
		if it == nil {
			return ""
		}
		return pictureURL(*it, preferHD)
	case nasa.SearchItem:
		return f.resolve(ctx, it).URL
	case *nasa.SearchItem:
		if it == nil {
			return ""
		}
		return f.resolve(ctx, *it).URL
	default:
		return ""
	}
}

// Resolve returns the full resolution record for a search item, consulting
// the cache first.
func (f *Facade) Resolve(ctx context.Context, item nasa.SearchItem) assets.Resolved {
	return f.resolve(ctx, item)
}

// RefreshAsset forgets any cached resolution for item and resolves it again.
func (f *Facade) RefreshAsset(ctx context.Context, item nasa.SearchItem) assets.Resolved {
	if err := f.cache.Delete(item.ID); err != nil {
		f.logger.Warn("asset cache delete failed", "nasa_id", item.ID, "error", err)
	}
	return f.resolve(ctx, item)
}

// PurgeAssets drops every cached resolution, on disk and in memory.
func (f *Facade) PurgeAssets() error {
	if err := f.cache.Purge(); err != nil {
		f.logger.Warn("asset cache purge failed", "error", err)
		return fmt.Errorf("purge asset cache: %w", err)
	}
	f.logger.Info("asset cache purged")
	return nil
}

// PrefetchAssets resolves items that are not cached yet, a few at a time.
// Failures are logged and skipped. It returns how many items ended up with a
// displayable URL.
func (f *Facade) PrefetchAssets(ctx context.Context, items []nasa.SearchItem) int {
	results := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)
	for i, item := range items {
		if r, ok := f.cache.Get(item.ID); ok {
			results[i] = r.Available()
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			results[i] = f.resolve(gctx, item).Available()
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	f.logger.Debug("asset prefetch finished", "items", len(items), "available", n)
	return n
}

func (f *Facade) resolve(ctx context.Context, item nasa.SearchItem) assets.Resolved {
	if item.ID == "" {
		return assets.Resolved{}
	}
	if r, ok := f.cache.Get(item.ID); ok {
		return r
	}

	links, err := f.client.FetchManifest(ctx, item.ID)
	if err != nil {
		// Thumbnails are a usable fallback but are not cached, so a later
		// call can still pick up the manifest.
		url, tier := assets.ResolveTier(assets.Hrefs(item.Links))
		f.logger.Warn("asset manifest unavailable",
			"nasa_id", item.ID,
			"error", err,
			"fallback", url != "",
		)
		return assets.Resolved{
			SourceID:   item.ID,
			URL:        url,
			Tier:       tier,
			Candidates: len(item.Links),
			ResolvedAt: time.Now(),
		}
	}

	url, tier := assets.ResolveTier(links)
	r := assets.Resolved{
		SourceID:   item.ID,
		URL:        url,
		Tier:       tier,
		Candidates: len(links),
		ResolvedAt: time.Now(),
	}
	if err := f.cache.Put(r); err != nil {
		f.logger.Warn("asset cache write failed", "nasa_id", item.ID, "error", err)
	}
	f.logger.Debug("asset resolved",
		"nasa_id", item.ID,
		"tier", tier.String(),
		"candidates", len(links),
	)
	return r
}

func pictureURL(p nasa.Picture, preferHD bool) string {
	if !p.IsImage() {
		return ""
	}
	if preferHD {
		if hd := strings.TrimSpace(p.HDURL); hd != "" {
			return hd
		}
	}
	return strings.TrimSpace(p.URL)
}
