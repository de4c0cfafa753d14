package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skyward/internal/assets"
	"github.com/five82/skyward/internal/nasa"
	"github.com/five82/skyward/internal/state"
)

type fakeFetcher struct {
	picture   func(ctx context.Context, date string) (nasa.Picture, error)
	pictures  func(ctx context.Context, count int) ([]nasa.Picture, error)
	search    func(ctx context.Context, q nasa.SearchQuery) (nasa.SearchResult, error)
	manifest  func(ctx context.Context, id string) ([]string, error)
	manifests atomic.Int32
}

func (f *fakeFetcher) FetchPicture(ctx context.Context, date string) (nasa.Picture, error) {
	return f.picture(ctx, date)
}

func (f *fakeFetcher) FetchPictures(ctx context.Context, count int) ([]nasa.Picture, error) {
	return f.pictures(ctx, count)
}

func (f *fakeFetcher) Search(ctx context.Context, q nasa.SearchQuery) (nasa.SearchResult, error) {
	return f.search(ctx, q)
}

func (f *fakeFetcher) FetchManifest(ctx context.Context, id string) ([]string, error) {
	f.manifests.Add(1)
	return f.manifest(ctx, id)
}

func newTestFacade(t *testing.T, f *fakeFetcher) *Facade {
	t.Helper()
	cache, err := assets.OpenCache("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return New(f, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func apolloResults() nasa.SearchResult {
	return nasa.SearchResult{
		TotalHits: 3,
		Items: []nasa.SearchItem{
			{ID: "A", Title: "Apollo 11 Launch", Links: []nasa.Link{{Href: "https://images-assets.nasa.gov/image/A/A~thumb.jpg", Rel: "preview"}}},
			{ID: "B", Title: "Apollo 11 Crew"},
			{ID: "C", Title: "Lunar Module Eagle"},
		},
	}
}

func TestFacade_SearchAndResolveManifest(t *testing.T) {
	f := &fakeFetcher{
		search: func(_ context.Context, q nasa.SearchQuery) (nasa.SearchResult, error) {
			assert.Equal(t, "apollo 11", q.Text)
			return apolloResults(), nil
		},
		manifest: func(_ context.Context, id string) ([]string, error) {
			require.Equal(t, "A", id)
			return []string{"x~large.jpg", "x~medium.png", "x~thumb.tif"}, nil
		},
	}
	fc := newTestFacade(t, f)

	snap := fc.Search(context.Background(), "  apollo 11 ")
	require.Equal(t, state.StatusReady, snap.Status)
	require.Len(t, snap.Items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{snap.Items[0].ID, snap.Items[1].ID, snap.Items[2].ID})
	assert.Equal(t, "apollo 11", fc.LastQuery())
	assert.Equal(t, 3, fc.TotalHits())

	assert.Equal(t, "x~medium.png", fc.ResolveDisplayURL(context.Background(), snap.Items[0], false))
	assert.Equal(t, "x~medium.png", fc.ResolveDisplayURL(context.Background(), &snap.Items[0], true))
	assert.Equal(t, int32(1), f.manifests.Load(), "second lookup is served from the cache")
}

func TestFacade_ManifestFailureFallsBackToThumbnail(t *testing.T) {
	f := &fakeFetcher{
		manifest: func(context.Context, string) ([]string, error) {
			return nil, &nasa.TransportError{Endpoint: "asset", Err: errors.New("dial tcp: refused")}
		},
	}
	fc := newTestFacade(t, f)
	item := apolloResults().Items[0]

	got := fc.Resolve(context.Background(), item)
	assert.Equal(t, "https://images-assets.nasa.gov/image/A/A~thumb.jpg", got.URL)
	assert.Equal(t, assets.TierUntagged, got.Tier)

	fc.Resolve(context.Background(), item)
	assert.Equal(t, int32(2), f.manifests.Load(), "fallback results are not cached")
}

func TestFacade_RefreshAssetBypassesCache(t *testing.T) {
	var calls atomic.Int32
	f := &fakeFetcher{
		manifest: func(context.Context, string) ([]string, error) {
			if calls.Add(1) == 1 {
				return []string{"a~orig.jpg"}, nil
			}
			return []string{"a~orig.jpg", "a~small.jpg"}, nil
		},
	}
	fc := newTestFacade(t, f)
	item := nasa.SearchItem{ID: "A"}

	assert.Equal(t, "a~orig.jpg", fc.ResolveDisplayURL(context.Background(), item, false))
	r := fc.RefreshAsset(context.Background(), item)
	assert.Equal(t, "a~small.jpg", r.URL)
	assert.Equal(t, assets.TierSmall, r.Tier)
	assert.Equal(t, "a~small.jpg", fc.ResolveDisplayURL(context.Background(), item, false))
}

func TestFacade_ResolveDisplayURLPictures(t *testing.T) {
	fc := newTestFacade(t, &fakeFetcher{})
	ctx := context.Background()

	plain := nasa.Picture{Date: "2020-01-01", MediaType: "image", URL: "https://apod.nasa.gov/a.jpg"}
	assert.Equal(t, "https://apod.nasa.gov/a.jpg", fc.ResolveDisplayURL(ctx, plain, true), "no hdurl falls back to url")

	hd := plain
	hd.HDURL = "https://apod.nasa.gov/a_hd.jpg"
	assert.Equal(t, "https://apod.nasa.gov/a_hd.jpg", fc.ResolveDisplayURL(ctx, hd, true))
	assert.Equal(t, "https://apod.nasa.gov/a.jpg", fc.ResolveDisplayURL(ctx, hd, false))

	video := nasa.Picture{MediaType: "video", URL: "https://youtube.com/embed/x"}
	assert.Empty(t, fc.ResolveDisplayURL(ctx, video, false))
	assert.True(t, IsVideo(video))
	assert.False(t, IsVideo(plain))

	assert.Empty(t, fc.ResolveDisplayURL(ctx, "not an item", false))
	assert.Empty(t, fc.ResolveDisplayURL(ctx, (*nasa.Picture)(nil), false))
	assert.Empty(t, fc.ResolveDisplayURL(ctx, nasa.SearchItem{}, false))
}

func TestFacade_RateLimitKeepsPriorItems(t *testing.T) {
	var fail atomic.Bool
	f := &fakeFetcher{
		pictures: func(_ context.Context, count int) ([]nasa.Picture, error) {
			if fail.Load() {
				return nil, &nasa.StatusError{Endpoint: "apod", StatusCode: 429}
			}
			return make([]nasa.Picture, count), nil
		},
	}
	fc := newTestFacade(t, f)

	snap := fc.LoadMany(context.Background(), 3)
	require.Equal(t, state.StatusReady, snap.Status)
	require.Len(t, snap.Items, 3)

	fail.Store(true)
	snap = fc.LoadMany(context.Background(), 3)
	assert.Equal(t, state.StatusFailed, snap.Status)
	assert.Len(t, snap.Items, 3)
	assert.Contains(t, snap.ErrorMessage, "429")
	assert.Contains(t, snap.ErrorMessage, "rate limit")
	assert.Equal(t, snap.ErrorMessage, fc.ErrorMessage())
}

func TestFacade_LoadManyClampsCount(t *testing.T) {
	var got []int
	f := &fakeFetcher{
		pictures: func(_ context.Context, count int) ([]nasa.Picture, error) {
			got = append(got, count)
			return nil, nil
		},
	}
	fc := newTestFacade(t, f)
	fc.LoadMany(context.Background(), 0)
	fc.LoadMany(context.Background(), 500)
	fc.LoadMany(context.Background(), 7)
	assert.Equal(t, []int{10, 100, 7}, got)
}

func TestFacade_LoadSingle(t *testing.T) {
	f := &fakeFetcher{
		picture: func(_ context.Context, date string) (nasa.Picture, error) {
			return nasa.Picture{Date: date, Title: "Pillars", MediaType: "image", URL: "p.jpg"}, nil
		},
	}
	fc := newTestFacade(t, f)

	snap := fc.LoadSingle(context.Background(), "2020-01-01")
	require.Equal(t, state.StatusReady, snap.Status)
	cur, ok := fc.Current()
	require.True(t, ok)
	assert.Equal(t, "2020-01-01", cur.Date)
	assert.True(t, fc.HasImages())
	assert.Equal(t, 1, fc.TotalImages())

	snap = fc.LoadSingle(context.Background(), "01/02/2020")
	assert.Equal(t, state.StatusFailed, snap.Status)
	assert.Contains(t, snap.ErrorMessage, "YYYY-MM-DD")
	assert.Len(t, snap.Items, 1, "previous picture stays visible")
}

func TestFacade_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status", &nasa.StatusError{StatusCode: 500}, "search images: HTTP 500 Internal Server Error"},
		{"transport", &nasa.TransportError{Err: errors.New("no route")}, "search images: network unreachable"},
		{"cancelled", &nasa.TransportError{Err: context.Canceled}, "search images: cancelled"},
		{"decode", errors.New("decode response: EOF"), "search images: unexpected response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{
				search: func(context.Context, nasa.SearchQuery) (nasa.SearchResult, error) {
					return nasa.SearchResult{}, tt.err
				},
			}
			snap := newTestFacade(t, f).Search(context.Background(), "orion")
			assert.Equal(t, state.StatusFailed, snap.Status)
			assert.Equal(t, tt.want, snap.ErrorMessage)
		})
	}
}

func TestFacade_BlankSearchFailsWithoutRequest(t *testing.T) {
	fc := newTestFacade(t, &fakeFetcher{})
	snap := fc.Search(context.Background(), "   ")
	assert.Equal(t, state.StatusFailed, snap.Status)
	assert.NotEmpty(t, snap.ErrorMessage)
}

func TestFacade_StaleSearchIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	f := &fakeFetcher{
		search: func(_ context.Context, q nasa.SearchQuery) (nasa.SearchResult, error) {
			if q.Text == "slow" {
				close(started)
				<-release
				return nasa.SearchResult{Items: []nasa.SearchItem{{ID: "old"}}}, nil
			}
			return nasa.SearchResult{Items: []nasa.SearchItem{{ID: "new"}}}, nil
		},
	}
	fc := newTestFacade(t, f)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fc.Search(context.Background(), "slow")
	}()
	<-started

	snap := fc.Search(context.Background(), "fast")
	require.Equal(t, state.StatusReady, snap.Status)

	close(release)
	wg.Wait()

	snap = fc.Results().Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "new", snap.Items[0].ID)
	assert.Equal(t, "fast", fc.LastQuery())
}

func TestFacade_ClearDropsInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	f := &fakeFetcher{
		picture: func(context.Context, string) (nasa.Picture, error) {
			close(started)
			<-release
			return nasa.Picture{Date: "2024-01-01"}, nil
		},
	}
	fc := newTestFacade(t, f)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fc.LoadSingle(context.Background(), "")
	}()
	<-started
	assert.True(t, fc.IsLoading())

	fc.Clear()
	close(release)
	<-done

	assert.False(t, fc.IsLoading())
	assert.False(t, fc.HasImages())
	assert.Equal(t, state.StatusIdle, fc.Today().Snapshot().Status)
}

func TestFacade_PrefetchAssets(t *testing.T) {
	f := &fakeFetcher{
		manifest: func(_ context.Context, id string) ([]string, error) {
			switch id {
			case "B":
				return []string{"b.tif"}, nil
			case "C":
				return nil, errors.New("boom")
			default:
				return []string{id + "~small.jpg"}, nil
			}
		},
	}
	fc := newTestFacade(t, f)
	items := apolloResults().Items

	// A resolves from its manifest, B has nothing displayable, C falls back to
	// having no thumbnails.
	assert.Equal(t, 1, fc.PrefetchAssets(context.Background(), items))
	assert.Equal(t, int32(3), f.manifests.Load())

	assert.Equal(t, 1, fc.PrefetchAssets(context.Background(), items))
	assert.Equal(t, int32(4), f.manifests.Load(), "only the uncached failure is retried")
}

func TestFacade_Filter(t *testing.T) {
	f := &fakeFetcher{
		search: func(context.Context, nasa.SearchQuery) (nasa.SearchResult, error) {
			return apolloResults(), nil
		},
	}
	fc := newTestFacade(t, f)
	fc.Search(context.Background(), "apollo")

	items := fc.Results().Snapshot().Items

	assert.Len(t, FilterResults(items, ""), 3)

	got := FilterResults(items, "CREW")
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].ID)

	got = FilterResults(items, "apollo")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, []string{got[0].ID, got[1].ID})

	assert.Empty(t, FilterResults(items, "zzz"))
	assert.Empty(t, FilterPictures(nil, "apollo"))

	pics := []nasa.Picture{{Title: "Crab Nebula"}, {Title: "Ultima Thule"}}
	gotPics := FilterPictures(pics, "thule")
	require.Len(t, gotPics, 1)
	assert.Equal(t, "Ultima Thule", gotPics[0].Title)
}

func TestFacade_SearchMetadataVisibleWithItems(t *testing.T) {
	f := &fakeFetcher{
		search: func(context.Context, nasa.SearchQuery) (nasa.SearchResult, error) {
			return apolloResults(), nil
		},
	}
	fc := newTestFacade(t, f)
	ch, cancel := fc.Results().Subscribe()
	defer cancel()
	<-ch

	go fc.Search(context.Background(), "apollo")
	for snap := range ch {
		if snap.Status == state.StatusReady {
			assert.Equal(t, "apollo", fc.LastQuery(), "items published before their query")
			assert.Equal(t, 3, fc.TotalHits())
			return
		}
	}
}

func TestFacade_SearchMetadataFollowsItemsUnderClear(t *testing.T) {
	f := &fakeFetcher{
		search: func(_ context.Context, q nasa.SearchQuery) (nasa.SearchResult, error) {
			return nasa.SearchResult{Items: []nasa.SearchItem{{ID: q.Text}}, TotalHits: len(q.Text)}, nil
		},
	}
	fc := newTestFacade(t, f)

	for round := range 100 {
		var wg sync.WaitGroup
		for i := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fc.Search(context.Background(), fmt.Sprintf("q%d-%d", round, i))
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fc.Clear()
		}()
		wg.Wait()

		snap := fc.Results().Snapshot()
		switch snap.Status {
		case state.StatusIdle:
			require.Empty(t, fc.LastQuery(), "round %d: cleared results kept a query", round)
			require.Zero(t, fc.TotalHits(), "round %d", round)
		case state.StatusReady:
			require.Len(t, snap.Items, 1)
			require.Equal(t, snap.Items[0].ID, fc.LastQuery(), "round %d: query does not describe the items", round)
			require.Equal(t, len(snap.Items[0].ID), fc.TotalHits(), "round %d", round)
		default:
			t.Fatalf("round %d: status = %v, want idle or ready", round, snap.Status)
		}
	}
}

func TestFacade_ClearCollectionResetsOnlyThatCollection(t *testing.T) {
	f := &fakeFetcher{
		picture: func(context.Context, string) (nasa.Picture, error) {
			return nasa.Picture{Date: "2024-01-01", Title: "today"}, nil
		},
		pictures: func(_ context.Context, count int) ([]nasa.Picture, error) {
			return make([]nasa.Picture, count), nil
		},
		search: func(context.Context, nasa.SearchQuery) (nasa.SearchResult, error) {
			return apolloResults(), nil
		},
	}
	fc := newTestFacade(t, f)
	ctx := context.Background()
	fc.LoadSingle(ctx, "")
	fc.LoadMany(ctx, 2)
	fc.Search(ctx, "apollo")

	fc.ClearCollection(KindGallery)
	assert.Equal(t, state.StatusIdle, fc.Gallery().Snapshot().Status)
	assert.Empty(t, fc.Gallery().Snapshot().Items)
	assert.Equal(t, state.StatusReady, fc.Today().Snapshot().Status)
	assert.Equal(t, "apollo", fc.LastQuery())

	fc.ClearCollection(KindSearch)
	assert.Equal(t, state.StatusIdle, fc.Results().Snapshot().Status)
	assert.Empty(t, fc.LastQuery())
	assert.Zero(t, fc.TotalHits())
	assert.Equal(t, 1, fc.TotalImages())
}

func TestFacade_PurgeAssetsForcesManifestRefetch(t *testing.T) {
	f := &fakeFetcher{
		manifest: func(_ context.Context, id string) ([]string, error) {
			return []string{id + "~medium.jpg"}, nil
		},
	}
	fc := newTestFacade(t, f)
	item := apolloResults().Items[0]
	ctx := context.Background()

	assert.Equal(t, "A~medium.jpg", fc.Resolve(ctx, item).URL)
	fc.Resolve(ctx, item)
	require.Equal(t, int32(1), f.manifests.Load())

	require.NoError(t, fc.PurgeAssets())
	assert.Equal(t, "A~medium.jpg", fc.Resolve(ctx, item).URL)
	assert.Equal(t, int32(2), f.manifests.Load())
}
