package download

import (
	"regexp"
	"strings"
)

var (
	nonFilenameChars   = regexp.MustCompile(`[^\w\-]+`)
	repeatedSeparators = regexp.MustCompile(`__+`)
)

// SanitizeCaseName maps a case name to a filesystem-safe token: word
// characters and hyphens survive, everything else collapses to a single
// underscore, with no leading or trailing underscore. Idempotent, so a name
// already sanitized passes through unchanged.
func SanitizeCaseName(name string) string {
	clean := nonFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	clean = repeatedSeparators.ReplaceAllString(clean, "_")
	return strings.Trim(clean, "_")
}
