// Package query is the single entry point presentation code uses to load and
// inspect NASA data.
//
// A Facade owns three collection stores (today's picture, the random gallery
// and image search results). Each intent follows the same shape:
//
//	tok := store.Begin()
//	result, err := client.Fetch(ctx, ...)
//	if err != nil {
//		store.Fail(tok, describe(action, err))
//	} else {
//		store.Succeed(tok, result)
//	}
//
// A response that arrives after a newer request, or after Clear, is dropped
// by the store and only logged. Presentation code gets read-only Collection
// views and never mutates a store directly.
//
// Error messages are normalized before they reach a store: HTTP failures show
// their status code, rate limiting is called out, and transport errors read
// "network unreachable". The underlying error goes to the log.
//
// Search hits resolve to a display URL through their asset manifest. The
// result is cached in an assets.Cache; when the manifest cannot be fetched
// the thumbnail links are used instead and nothing is cached.
package query
