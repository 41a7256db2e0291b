package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for text normalization
var (
	// anything that is not a letter, digit or whitespace
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// normalizeText case-folds s, turns punctuation into spaces and collapses whitespace.
// Catalog names and user messages go through the same normalization before matching.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
