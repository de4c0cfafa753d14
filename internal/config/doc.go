// Package config handles loading skyward's configuration file.
//
// # Overview
//
// Skyward needs very little configuration: an API key, optionally alternate
// endpoints, and a few local paths. Everything has a default, so the program
// runs without any file at all (on the shared DEMO_KEY quota).
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/skyward/config.toml
//  3. If the file doesn't exist, use defaults
//  4. Empty or non-positive fields fall back to their defaults
//  5. NASA_API_KEY, when set, replaces api_key in every case
//
// # TOML Format
//
//	api_key = "your-api.nasa.gov-key"
//	apod_url = "https://api.nasa.gov/planetary/apod"
//	images_url = "https://images-api.nasa.gov"
//	cache_dir = "~/.cache/skyward"
//	log_file = "~/.local/share/skyward/skyward.log"
//	log_level = "INFO"
//	request_interval_ms = 250
//	gallery_count = 10
//
// Empty endpoint fields are passed through as "" so nasa.NewClient applies
// its own defaults. gallery_count is clamped to 1..100, the range the APOD
// count parameter accepts.
//
// # Path Expansion
//
// cache_dir, log_file and the config path itself accept "~" and relative
// paths; both are converted to absolute paths.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and
// TOML parse errors. A missing file is not an error.
package config
