// Package app provides the orchestration layer for the skyward application.
//
// # Overview
//
// This package wires together configuration, logging, the NASA client, the
// asset cache and the query facade, then hands control to either the TUI or a
// one-shot headless print. It is the composition root: nothing below it knows
// how the others were built.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       config.toml + NASA_API_KEY
//	       ├─────> logging.Setup()     JSON log file (discarded on failure)
//	       ├─────> prefs.Load()        theme, HD toggle, last search
//	       ├─────> nasa.NewClient()    rate-limited HTTP client
//	       ├─────> assets.OpenCache()  bbolt cache (memory fallback)
//	       ├─────> query.New()         facade over three stores
//	       └─────> ui.Run() or Print()
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file present but unreadable or invalid
//   - Client endpoint URLs that do not parse
//   - In print mode, the failed collection's message
//
// Everything else degrades: a missing log file means no logging, a locked
// cache database means a memory-only cache, and bad preferences mean
// defaults. No request is retried automatically; the user reloads.
//
// # Print Mode
//
// Print runs one intent and writes "title<TAB>url" lines, which makes
// skyward usable from scripts:
//
//	skyward -print search -query "apollo 11" | cut -f2 | xargs -n1 curl -O
package app
