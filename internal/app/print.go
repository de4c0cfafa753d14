package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/query"
	"github.com/five82/skyward/internal/state"
)

// Print modes accepted by Print.
const (
	PrintToday   = "today"
	PrintGallery = "gallery"
	PrintSearch  = "search"
)

// PrintOptions select one headless intent.
type PrintOptions struct {
	Mode  string
	Date  string
	Count int
	Query string
	HD    bool
}

// Print runs a single intent against f and writes one "title<TAB>url" line
// per item to w. Items without a displayable image get an empty url column.
// It returns the collection's error message when the intent failed.
func Print(ctx context.Context, f *query.Facade, opts PrintOptions, w io.Writer) error {
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case PrintToday:
		snap := f.LoadSingle(ctx, opts.Date)
		if err := snapshotErr(snap); err != nil {
			return err
		}
		return writePictures(ctx, f, snap.Items, opts.HD, w)

	case PrintGallery:
		snap := f.LoadMany(ctx, opts.Count)
		if err := snapshotErr(snap); err != nil {
			return err
		}
		return writePictures(ctx, f, snap.Items, opts.HD, w)

	case PrintSearch:
		snap := f.Search(ctx, opts.Query)
		if err := snapshotErr(snap); err != nil {
			return err
		}
		f.PrefetchAssets(ctx, snap.Items)
		for _, item := range snap.Items {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", oneLine(item.Title), f.ResolveDisplayURL(ctx, item, opts.HD)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown print mode %q (want %s, %s or %s)", opts.Mode, PrintToday, PrintGallery, PrintSearch)
	}
}

func writePictures(ctx context.Context, f *query.Facade, pics []nasa.Picture, hd bool, w io.Writer) error {
	for _, p := range pics {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", oneLine(p.Title), f.ResolveDisplayURL(ctx, p, hd)); err != nil {
			return err
		}
	}
	return nil
}

func snapshotErr[T any](snap state.Snapshot[T]) error {
	if snap.Failed() {
		return errors.New(snap.ErrorMessage)
	}
	return nil
}

// oneLine keeps a title from breaking the tab-separated output.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
