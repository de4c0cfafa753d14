package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/config"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/state"
)

// Collection is the read-only view of a store handed to presentation code.
type Collection[T any] interface {
	Snapshot() state.Snapshot[T]
	Subscribe() (<-chan state.Snapshot[T], func())
}

// Facade turns user intents into store transitions and exposes derived views
// over the three collections.
type Facade struct {
	client nasa.Fetcher
	cache  *assets.Cache
	logger *slog.Logger

	today   *state.Store[nasa.Picture]
	gallery *state.Store[nasa.Picture]
	search  *state.Store[nasa.SearchItem]

	// lastQuery and totalHits describe the items in search. They are only
	// written from search store hooks, so they change together with them.
	mu        sync.RWMutex
	lastQuery string
	totalHits int
}

// New builds a Facade with empty collections. cache may be nil, in which case
// resolutions are recomputed on every call.
func New(client nasa.Fetcher, cache *assets.Cache, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		client:  client,
		cache:   cache,
		logger:  logger,
		today:   &state.Store[nasa.Picture]{},
		gallery: &state.Store[nasa.Picture]{},
		search:  &state.Store[nasa.SearchItem]{},
	}
}

// Today is the single-day collection.
func (f *Facade) Today() Collection[nasa.Picture] { return f.today }

// Gallery is the random multi-day collection.
func (f *Facade) Gallery() Collection[nasa.Picture] { return f.gallery }

// Results is the image search collection.
func (f *Facade) Results() Collection[nasa.SearchItem] { return f.search }

// LoadSingle fetches the picture for dateKey (YYYY-MM-DD), or today's when
// dateKey is empty.
func (f *Facade) LoadSingle(ctx context.Context, dateKey string) state.Snapshot[nasa.Picture] {
	const action = "load picture of the day"
	dateKey = strings.TrimSpace(dateKey)
	tok := f.today.Begin()

	if dateKey != "" {
		if err := nasa.ValidateDate(dateKey); err != nil {
			f.today.Fail(tok, fmt.Sprintf("%s: %v", action, err))
			return f.today.Snapshot()
		}
	}

	start := time.Now()
	pic, err := f.client.FetchPicture(ctx, dateKey)
	if err != nil {
		f.fail(f.today.Fail, tok, "today", action, err)
		return f.today.Snapshot()
	}
	f.apply(f.today.Succeed(tok, []nasa.Picture{pic}), "today", 1, start)
	return f.today.Snapshot()
}

// LoadMany fetches count random pictures into the gallery. count is clamped
// to what the API accepts.
func (f *Facade) LoadMany(ctx context.Context, count int) state.Snapshot[nasa.Picture] {
	const action = "load gallery"
	count = config.ClampCount(count)
	tok := f.gallery.Begin()

	start := time.Now()
	pics, err := f.client.FetchPictures(ctx, count)
	if err != nil {
		f.fail(f.gallery.Fail, tok, "gallery", action, err)
		return f.gallery.Snapshot()
	}
	f.apply(f.gallery.Succeed(tok, pics), "gallery", len(pics), start)
	return f.gallery.Snapshot()
}

// Search runs an image library search.
func (f *Facade) Search(ctx context.Context, text string) state.Snapshot[nasa.SearchItem] {
	const action = "search images"
	text = strings.TrimSpace(text)
	tok := f.search.Begin()

	if text == "" {
		f.search.Fail(tok, action+": enter something to search for")
		return f.search.Snapshot()
	}

	start := time.Now()
	res, err := f.client.Search(ctx, nasa.SearchQuery{Text: text})
	if err != nil {
		f.fail(f.search.Fail, tok, "search", action, err)
		return f.search.Snapshot()
	}
	applied := f.search.Commit(tok, res.Items, func() {
		f.setSearchMeta(text, res.TotalHits)
	})
	f.apply(applied, "search", len(res.Items), start)
	return f.search.Snapshot()
}

// Kind names one of the facade's collections.
type Kind int

const (
	KindToday Kind = iota
	KindGallery
	KindSearch
)

func (k Kind) String() string {
	switch k {
	case KindGallery:
		return "gallery"
	case KindSearch:
		return "search"
	default:
		return "today"
	}
}

// Clear resets every collection and forgets the last search.
func (f *Facade) Clear() {
	f.reset(KindToday)
	f.reset(KindGallery)
	f.reset(KindSearch)
	f.logger.Debug("collections cleared")
}

// ClearCollection resets one collection, invalidating its in-flight request.
// Clearing search also forgets the last query.
func (f *Facade) ClearCollection(k Kind) {
	f.reset(k)
	f.logger.Debug("collection cleared", "collection", k.String())
}

func (f *Facade) reset(k Kind) {
	switch k {
	case KindGallery:
		f.gallery.Reset()
	case KindSearch:
		f.search.ResetWith(func() { f.setSearchMeta("", 0) })
	default:
		f.today.Reset()
	}
}

// LastQuery returns the text of the last search that completed successfully.
func (f *Facade) LastQuery() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastQuery
}

// TotalHits is the server-side match count of the last successful search,
// which may exceed the number of items on the first page.
func (f *Facade) TotalHits() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.totalHits
}

func (f *Facade) setSearchMeta(query string, totalHits int) {
	f.mu.Lock()
	f.lastQuery = query
	f.totalHits = totalHits
	f.mu.Unlock()
}

func (f *Facade) apply(applied bool, collection string, n int, start time.Time) {
	if !applied {
		f.logger.Debug("stale response dropped", "collection", collection)
		return
	}
	f.logger.Info("collection loaded",
		"collection", collection,
		"items", n,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}

func (f *Facade) fail(failFn func(state.Token, string) bool, tok state.Token, collection, action string, err error) {
	msg := describe(action, err)
	if !failFn(tok, msg) {
		f.logger.Debug("stale failure dropped", "collection", collection, "error", err)
		return
	}
	f.logger.Warn("collection request failed", "collection", collection, "error", err)
}

// describe turns a client error into text fit for the status line. Raw error
// strings never reach the UI.
func describe(action string, err error) string {
	var statusErr *nasa.StatusError
	var transportErr *nasa.TransportError
	switch {
	case errors.Is(err, context.Canceled):
		return action + ": cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return action + ": timed out"
	case errors.As(err, &statusErr):
		msg := fmt.Sprintf("%s: HTTP %d %s", action, statusErr.StatusCode, statusErr.StatusText())
		if statusErr.RateLimited() {
			msg += " (rate limit exceeded, try again later)"
		}
		return strings.TrimSpace(msg)
	case errors.As(err, &transportErr):
		return action + ": network unreachable"
	default:
		return action + ": unexpected response"
	}
}
