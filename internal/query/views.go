package query

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/five82/skyward/internal/nasa"
)

// TotalImages counts the pictures and search hits currently held.
func (f *Facade) TotalImages() int {
	return len(f.today.Snapshot().Items) + len(f.gallery.Snapshot().Items) + len(f.search.Snapshot().Items)
}

// HasImages reports whether any collection holds at least one item.
func (f *Facade) HasImages() bool {
	return f.TotalImages() > 0
}

// IsLoading reports whether any collection has a request in flight.
func (f *Facade) IsLoading() bool {
	return f.today.Snapshot().Loading() || f.gallery.Snapshot().Loading() || f.search.Snapshot().Loading()
}

// ErrorMessage returns the message of the first failed collection in
// today, gallery, search order, or "".
func (f *Facade) ErrorMessage() string {
	if s := f.today.Snapshot(); s.Failed() {
		return s.ErrorMessage
	}
	if s := f.gallery.Snapshot(); s.Failed() {
		return s.ErrorMessage
	}
	if s := f.search.Snapshot(); s.Failed() {
		return s.ErrorMessage
	}
	return ""
}

// Current returns the loaded picture of the day.
func (f *Facade) Current() (nasa.Picture, bool) {
	items := f.today.Snapshot().Items
	if len(items) == 0 {
		return nasa.Picture{}, false
	}
	return items[0], true
}

// IsVideo reports whether item is a video picture. Search hits are always
// images.
func IsVideo(item any) bool {
	switch it := item.(type) {
	case nasa.Picture:
		return it.IsVideo()
	case *nasa.Picture:
		return it != nil && it.IsVideo()
	default:
		return false
	}
}

// FilterResults fuzzy-matches text against the titles of items, best match
// first. An empty filter returns items unchanged. Callers pass the snapshot
// they are rendering so the filtered list never mixes two store states.
func FilterResults(items []nasa.SearchItem, text string) []nasa.SearchItem {
	return fuzzyFilter(items, text, func(s nasa.SearchItem) string { return s.Title })
}

// FilterPictures is FilterResults for APOD pictures.
func FilterPictures(items []nasa.Picture, text string) []nasa.Picture {
	return fuzzyFilter(items, text, func(p nasa.Picture) string { return p.Title })
}

// titleIndex implements fuzzy.Source over pre-lowered titles.
type titleIndex []string

func (t titleIndex) String(i int) string { return t[i] }
func (t titleIndex) Len() int            { return len(t) }

func fuzzyFilter[T any](items []T, text string, title func(T) string) []T {
	text = strings.TrimSpace(text)
	if text == "" {
		return items
	}

	idx := make(titleIndex, len(items))
	for i, it := range items {
		idx[i] = strings.ToLower(title(it))
	}

	matches := fuzzy.FindFrom(strings.ToLower(text), idx)
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}
