package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/logtail"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/query"
	"github.com/five82/skyward/internal/state"
)

// Messages

type todayMsg struct{ snap state.Snapshot[nasa.Picture] }

type galleryMsg struct{ snap state.Snapshot[nasa.Picture] }

type searchMsg struct{ snap state.Snapshot[nasa.SearchItem] }

type resolvedMsg struct {
	id     string
	result assets.Resolved
}

type prefetchMsg struct {
	available int
	total     int
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

// waitFor blocks on the next snapshot from ch. A closed channel ends the
// loop by producing no message.
func waitFor[T any](ch <-chan state.Snapshot[T], wrap func(state.Snapshot[T]) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(snap)
	}
}

// Intent commands report through the store subscriptions, not their return
// value.

func loadTodayCmd(ctx context.Context, f *query.Facade, date string) tea.Cmd {
	return func() tea.Msg {
		f.LoadSingle(ctx, date)
		return nil
	}
}

func loadGalleryCmd(ctx context.Context, f *query.Facade, count int) tea.Cmd {
	return func() tea.Msg {
		f.LoadMany(ctx, count)
		return nil
	}
}

// searchCmd runs the search and then warms the asset cache for its hits.
func searchCmd(ctx context.Context, f *query.Facade, text string) tea.Cmd {
	return func() tea.Msg {
		snap := f.Search(ctx, text)
		if snap.Status != state.StatusReady || len(snap.Items) == 0 {
			return nil
		}
		n := f.PrefetchAssets(ctx, snap.Items)
		return prefetchMsg{available: n, total: len(snap.Items)}
	}
}

func resolveCmd(ctx context.Context, f *query.Facade, item nasa.SearchItem, refresh bool) tea.Cmd {
	return func() tea.Msg {
		var r assets.Resolved
		if refresh {
			r = f.RefreshAsset(ctx, item)
		} else {
			r = f.Resolve(ctx, item)
		}
		return resolvedMsg{id: item.ID, result: r}
	}
}

func logsCmd(path string, limit int) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Read(path, limit)
		return logsMsg{entries: entries, err: err}
	}
}
