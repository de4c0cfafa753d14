package nasa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher defines the remote calls skyward makes against the NASA APIs.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchPicture(ctx context.Context, date string) (Picture, error)
	FetchPictures(ctx context.Context, count int) ([]Picture, error)
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
	FetchManifest(ctx context.Context, id string) ([]string, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	DefaultAPODURL   = "https://api.nasa.gov/planetary/apod"
	DefaultImagesURL = "https://images-api.nasa.gov"
	DefaultAPIKey    = "DEMO_KEY"

	defaultUserAgent       = "skyward/0.1"
	defaultRequestInterval = 250 * time.Millisecond
	requestTimeout         = 20 * time.Second
	requestBurst           = 2
)

// Options configure a Client. Zero values fall back to the public endpoints.
type Options struct {
	APIKey          string
	APODURL         string
	ImagesURL       string
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

// Client talks to the APOD and image library HTTP APIs.
type Client struct {
	apiKey    string
	apodURL   *url.URL
	imagesURL *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	apod, err := parseEndpoint(opts.APODURL, DefaultAPODURL)
	if err != nil {
		return nil, err
	}
	images, err := parseEndpoint(opts.ImagesURL, DefaultImagesURL)
	if err != nil {
		return nil, err
	}
	images.Path = strings.TrimRight(images.Path, "/")

	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		key = DefaultAPIKey
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	limit := rate.Every(defaultRequestInterval)
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	} else if opts.RequestInterval < 0 {
		limit = rate.Inf
	}

	return &Client{
		apiKey:    key,
		apodURL:   apod,
		imagesURL: images,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, requestBurst),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchPicture retrieves the APOD entry for date (YYYY-MM-DD), or today's
// entry when date is empty.
func (c *Client) FetchPicture(ctx context.Context, date string) (Picture, error) {
	if c == nil {
		return Picture{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if date = strings.TrimSpace(date); date != "" {
		if err := ValidateDate(date); err != nil {
			return Picture{}, err
		}
		values.Set("date", date)
	}
	pictures, err := c.fetchAPOD(ctx, values)
	if err != nil {
		return Picture{}, err
	}
	if len(pictures) == 0 {
		return Picture{}, fmt.Errorf("decode response: empty payload")
	}
	return pictures[0], nil
}

// FetchPictures retrieves count random APOD entries.
func (c *Client) FetchPictures(ctx context.Context, count int) ([]Picture, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive")
	}
	values := url.Values{}
	values.Set("count", strconv.Itoa(count))
	return c.fetchAPOD(ctx, values)
}

// Search queries the image library for still images.
func (c *Client) Search(ctx context.Context, query SearchQuery) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, fmt.Errorf("client is nil")
	}
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return SearchResult{}, fmt.Errorf("search text required")
	}
	values := url.Values{}
	values.Set("q", text)
	values.Set("media_type", MediaImage)
	if query.Page > 1 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	reqURL := *c.imagesURL
	reqURL.Path += "/search"
	reqURL.RawQuery = values.Encode()

	var payload searchResponse
	if err := c.get(ctx, &reqURL, &payload); err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{TotalHits: payload.Collection.Metadata.TotalHits}
	for _, raw := range payload.Collection.Items {
		if item, ok := raw.flatten(); ok {
			result.Items = append(result.Items, item)
		}
	}
	return result, nil
}

// FetchManifest retrieves the candidate asset URLs for an image library item,
// in manifest order.
func (c *Client) FetchManifest(ctx context.Context, id string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("item id required")
	}
	reqURL := *c.imagesURL
	reqURL.Path += "/asset/" + id

	var payload manifestResponse
	if err := c.get(ctx, &reqURL, &payload); err != nil {
		return nil, err
	}
	links := make([]string, 0, len(payload.Collection.Items))
	for _, item := range payload.Collection.Items {
		if href := strings.TrimSpace(item.Href); href != "" {
			links = append(links, href)
		}
	}
	return links, nil
}

// fetchAPOD accepts either a single object or an array, since the endpoint
// switches shape depending on the query.
func (c *Client) fetchAPOD(ctx context.Context, values url.Values) ([]Picture, error) {
	values.Set("api_key", c.apiKey)
	reqURL := *c.apodURL
	reqURL.RawQuery = values.Encode()

	var raw json.RawMessage
	if err := c.get(ctx, &reqURL, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pictures []Picture
		if err := json.Unmarshal(trimmed, &pictures); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return pictures, nil
	}
	var picture Picture
	if err := json.Unmarshal(trimmed, &picture); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return []Picture{picture}, nil
}

func (c *Client) get(ctx context.Context, reqURL *url.URL, dest any) error {
	endpoint := redact(reqURL)
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: empty body")
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ValidateDate checks an APOD date key.
func ValidateDate(date string) error {
	if _, err := time.Parse(apodDateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	return nil
}

// redact drops the query string so API keys never end up in errors or logs.
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.Fragment = ""
	return clean.String()
}

func parseEndpoint(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
