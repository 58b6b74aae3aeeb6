package types

import "strings"

// normalizeKey lowercases and trims a name for use as a dedup key; stores
// that key entities/topics by (lowercased name[, type]).
func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeMessage collapses internal whitespace and lowercases a message,
// used as the input to the analysis cache's content hash so that
// "Hello  World" and "hello world" resolve to the same cache entry.
func NormalizeMessage(msg string) string {
	fields := strings.Fields(strings.ToLower(msg))
	return strings.Join(fields, " ")
}
