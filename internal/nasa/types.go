package nasa

import (
	"strings"
	"time"
)

const apodDateLayout = "2006-01-02"

// Media types reported by the APOD and image library endpoints.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Picture mirrors one APOD entry.
type Picture struct {
	Date           string `json:"date"`
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	Copyright      string `json:"copyright,omitempty"`
	ServiceVersion string `json:"service_version"`
}

// IsImage reports whether the entry can be shown as a still image.
func (p Picture) IsImage() bool {
	return strings.EqualFold(strings.TrimSpace(p.MediaType), MediaImage)
}

// IsVideo reports whether the entry links to an embedded video.
func (p Picture) IsVideo() bool {
	return strings.EqualFold(strings.TrimSpace(p.MediaType), MediaVideo)
}

// Link is one candidate asset reference attached to a search result.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Render string `json:"render,omitempty"`
}

// SearchItem is a flattened image library search hit.
type SearchItem struct {
	ID          string
	Title       string
	Description string
	CreatedDate string
	Center      string
	Keywords    []string
	// ManifestHref points at the item's collection.json.
	ManifestHref string
	// Links are thumbnail candidates in the order the API returned them.
	Links []Link
}

// HasKeyword reports whether keyword is attached to the item, ignoring case.
func (s SearchItem) HasKeyword(keyword string) bool {
	for _, k := range s.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

// ParsedCreated returns the creation timestamp when it can be parsed.
func (s SearchItem) ParsedCreated() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, apodDateLayout} {
		if t, err := time.Parse(layout, s.CreatedDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SearchQuery configures an image library search.
type SearchQuery struct {
	Text string
	Page int
}

// SearchResult holds one page of search hits.
type SearchResult struct {
	Items     []SearchItem
	TotalHits int
}

// searchResponse mirrors GET /search.
type searchResponse struct {
	Collection struct {
		Items    []searchItemPayload `json:"items"`
		Metadata struct {
			TotalHits int `json:"total_hits"`
		} `json:"metadata"`
	} `json:"collection"`
}

type searchItemPayload struct {
	Href  string           `json:"href"`
	Data  []searchItemData `json:"data"`
	Links []Link           `json:"links"`
}

type searchItemData struct {
	NASAID      string   `json:"nasa_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DateCreated string   `json:"date_created"`
	Center      string   `json:"center"`
	Keywords    []string `json:"keywords"`
	MediaType   string   `json:"media_type"`
}

// manifestResponse mirrors GET /asset/{id}.
type manifestResponse struct {
	Collection struct {
		Items []struct {
			Href string `json:"href"`
		} `json:"items"`
	} `json:"collection"`
}

func (p searchItemPayload) flatten() (SearchItem, bool) {
	if len(p.Data) == 0 {
		return SearchItem{}, false
	}
	d := p.Data[0]
	if strings.TrimSpace(d.NASAID) == "" {
		return SearchItem{}, false
	}
	links := make([]Link, len(p.Links))
	copy(links, p.Links)
	return SearchItem{
		ID:           d.NASAID,
		Title:        d.Title,
		Description:  d.Description,
		CreatedDate:  d.DateCreated,
		Center:       d.Center,
		Keywords:     dedupeKeywords(d.Keywords),
		ManifestHref: p.Href,
		Links:        links,
	}, true
}

// dedupeKeywords keeps first occurrences, compared case-insensitively.
func dedupeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		norm := strings.ToLower(k)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, k)
	}
	return out
}
