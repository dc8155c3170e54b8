package harness

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize canonicalizes line endings and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(lineEndings.Replace(s))
}

// Match reports whether actual equals expected after normalization.
func Match(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}
