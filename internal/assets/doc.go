// Package assets picks a displayable image URL out of an asset manifest and
// remembers the answer.
//
// Resolve is pure: it keeps links whose path ends in .jpg, .jpeg, .png or
// .webp (case-insensitive), then takes the first link tagged medium, small,
// large or original, in that order, and otherwise the first displayable link.
// An empty result means the item has no viewable image; callers treat that as
// a placeholder, not an error.
//
// Cache stores Resolved values in a bbolt file with an in-memory read-through
// layer. Entries are replaced whole on refetch.
package assets
