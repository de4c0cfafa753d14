// Package logtail reads the tail of skyward's own JSON log for the in-app
// log view.
//
// Read keeps the last N lines in a ring buffer, so memory stays O(N) however
// large the file grows, and parses each line with Parse. Lines written by
// the slog JSON handler become Entry values with time, level, message and
// stringified attributes; anything else is kept verbatim in Entry.Raw.
//
//	entries, err := logtail.Read(cfg.LogFile, 200)
//	for _, e := range entries {
//		fmt.Println(e.Level, e.Message, e.Summary())
//	}
//
// A missing log file is not an error; it simply has no entries yet.
package logtail
