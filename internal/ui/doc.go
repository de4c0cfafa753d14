// Package ui provides the terminal user interface for skyward.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never talks to the NASA APIs directly:
// every load goes through query.Facade, and every result arrives back as a
// snapshot published by one of the facade's collection stores.
//
//	key press ──→ intent Cmd ──→ Facade.LoadSingle / LoadMany / Search
//	                                      │
//	store.Subscribe() ←───────────────────┘
//	      │
//	      └──→ todayMsg / galleryMsg / searchMsg ──→ Model.Update ──→ View
//
// Because a store channel only holds its newest snapshot, a slow render never
// backs up the fetch side.
//
// # Package Structure
//
//   - app.go: Model, Options, Update loop, key handling and Run
//   - commands.go: tea messages and the commands that drive the facade
//   - render.go: header, command bar, list/detail panes, footer, log view
//   - help.go: help overlay built from the key bindings
//   - keys.go: key bindings (bubbles/key)
//   - theme.go: color themes and lipgloss styles
//
// # Views
//
//   - Today: the picture of the day
//   - Gallery: a random batch of pictures
//   - Search: NASA image library hits; enter resolves the display image
//   - Logs: the tail of skyward's own JSON log
//
// A failed collection keeps showing its previous items with the error message
// above them. Pictures are resolved while rendering since that needs no
// request; search hits are resolved on demand and after each search a
// background prefetch warms the asset cache.
//
// # Preferences
//
// Theme, the HD toggle and the last search text are written back to the
// preferences file as soon as they change.
package ui
