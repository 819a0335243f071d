// Package cache stores generated narratives on disk so an identical analysis
// does not pay for a second generation request.
//
// Entries are JSON files named by the SHA-256 of the model and prompt, each
// carrying its own expiry. Expired entries are treated as misses and removed
// lazily or by CleanupExpired.
package cache
