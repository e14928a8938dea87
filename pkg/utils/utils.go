package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout doubles as filename stem and sort key for stored artifacts
const timestampLayout = "2006-01-02T15-04-05"

var identifierPattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// TimestampID returns a second-granularity identifier for the given time
func TimestampID(t time.Time) string {
	return t.Format(timestampLayout)
}

// UniqueTimestampID returns a timestamp identifier, suffixed with a short
// UUID fragment when taken reports a same-second collision
func UniqueTimestampID(t time.Time, taken func(id string) bool) string {
	id := TimestampID(t)
	if taken == nil || !taken(id) {
		return id
	}
	return id + "-" + GenerateShortUUID()
}

// SanitizeIdentifier trims an identifier and neutralizes path-traversal
// characters so it is safe to use as a directory name. Returns "" if
// nothing usable remains.
func SanitizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	id = identifierPattern.ReplaceAllString(id, "_")
	id = strings.Trim(id, ".")
	return id
}

// GenerateShortUUID generates a short UUID (8 characters) for file names
func GenerateShortUUID() string {
	fullUUID := uuid.New().String()
	// Take first 8 characters for a short but still unique identifier
	return strings.ReplaceAll(fullUUID[:8], "-", "")
}

// CountWords returns the whitespace-token count of text
func CountWords(text string) int {
	return len(strings.Fields(text))
}
