// Package nasa provides an HTTP client for the APOD and NASA Image and Video
// Library APIs.
//
// # Overview
//
// This package is the only place skyward talks to the network. It issues the
// read-only requests the rest of the application needs and decodes them into
// plain Go types:
//
//   - client.go: Client, request helper, rate limiting
//   - types.go: Picture, SearchItem, Link and the wire payloads they are built from
//   - errors.go: TransportError and StatusError
//
// # Endpoints
//
//	GET {apod}?api_key=K[&date=YYYY-MM-DD]   one Picture (object)
//	GET {apod}?api_key=K&count=N             N random Pictures (array)
//	GET {images}/search?q=Q&media_type=image search hits
//	GET {images}/asset/{nasa_id}             candidate asset URLs
//
// The APOD endpoint switches between an object and an array depending on the
// query; fetchAPOD accepts both shapes for either call.
//
// # Client Usage
//
//	client, err := nasa.NewClient(nasa.Options{APIKey: key})
//	if err != nil {
//		return err
//	}
//
//	pic, err := client.FetchPicture(ctx, "2020-01-01")
//	hits, err := client.Search(ctx, nasa.SearchQuery{Text: "apollo 11"})
//	links, err := client.FetchManifest(ctx, hits.Items[0].ID)
//
// # Error Handling
//
// Errors are returned, never logged here:
//
//   - *TransportError: the request produced no response (DNS, refused, reset,
//     context cancellation). Unwrap exposes the cause.
//   - *StatusError: any non-2xx status. RateLimited reports HTTP 429.
//   - "decode response: ..." wrapped errors for malformed JSON.
//
// Error strings carry the endpoint without its query string so the API key
// never reaches logs or the UI.
//
// # Rate Limiting
//
// All requests share one golang.org/x/time/rate limiter (one request per
// 250ms by default, burst 2). The public DEMO_KEY allows very few requests
// per hour, and a burst of manifest lookups would otherwise exhaust it.
// A negative RequestInterval disables limiting, which the tests rely on.
//
// # Thread Safety
//
// Client is safe for concurrent use; it holds no mutable state besides the
// limiter, which is itself goroutine-safe.
package nasa
