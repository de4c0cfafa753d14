package assets

import (
	"net/url"
	"path"
	"strings"

	"github.com/five82/skyward/internal/nasa"
)

// Tier records which rule picked a resolved URL.
type Tier int

const (
	TierNone Tier = iota
	TierMedium
	TierSmall
	TierLarge
	TierOriginal
	TierUntagged
)

func (t Tier) String() string {
	switch t {
	case TierMedium:
		return "medium"
	case TierSmall:
		return "small"
	case TierLarge:
		return "large"
	case TierOriginal:
		return "original"
	case TierUntagged:
		return "untagged"
	default:
		return "none"
	}
}

// displayableSuffixes are the formats a terminal or browser image viewer can
// open directly. TIFF and FITS masters are excluded.
var displayableSuffixes = []string{".jpg", ".jpeg", ".png", ".webp"}

// tierOrder is the preference order for size markers. Markers are matched
// against variantName, never the full path: asset paths repeat the NASA id in
// both the directory and the file name, and an id such as
// "small-magellanic-cloud" must not rank every file of the item.
var tierOrder = []struct {
	marker string
	tier   Tier
}{
	{"medium", TierMedium},
	{"small", TierSmall},
	{"large", TierLarge},
	{"original", TierOriginal},
}

// Resolve picks the best display URL from a manifest. It returns "" when no
// link has a displayable suffix.
func Resolve(links []string) string {
	chosen, _ := ResolveTier(links)
	return chosen
}

// ResolveTier is Resolve plus the rule that selected the URL.
func ResolveTier(links []string) (string, Tier) {
	type candidate struct {
		href string
		name string
	}
	var usable []candidate
	for _, href := range links {
		p := lowerPath(href)
		if hasDisplayableSuffix(p) {
			usable = append(usable, candidate{href: href, name: variantName(p)})
		}
	}
	if len(usable) == 0 {
		return "", TierNone
	}
	for _, t := range tierOrder {
		for _, c := range usable {
			if strings.Contains(c.name, t.marker) {
				return c.href, t.tier
			}
		}
	}
	return usable[0].href, TierUntagged
}

// Hrefs extracts link targets in order, skipping blanks.
func Hrefs(links []nasa.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if href := strings.TrimSpace(l.Href); href != "" {
			out = append(out, href)
		}
	}
	return out
}

// lowerPath returns the lower-cased path component of href. Query strings and
// fragments never count toward suffix or tier matching.
func lowerPath(href string) string {
	trimmed := strings.TrimSpace(href)
	if u, err := url.Parse(trimmed); err == nil {
		return strings.ToLower(u.Path)
	}
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.ToLower(trimmed)
}

// variantName returns the size variant of an asset path: the text after the
// last "~" of the file name without its extension ("a~medium.jpg" gives
// "medium"). File names without "~" are returned whole, minus the extension.
func variantName(p string) string {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if i := strings.LastIndex(stem, "~"); i >= 0 {
		return stem[i+1:]
	}
	return stem
}

func hasDisplayableSuffix(path string) bool {
	for _, suffix := range displayableSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
