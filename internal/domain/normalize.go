package domain

import (
	"strings"
)

// NormalizeGloss prepares gloss text for storage and comparison:
//   - trims leading/trailing whitespace
//   - compresses runs of whitespace into one space
//
// Case, diacritics and punctuation are preserved. Returns nil when nothing
// is left, so an empty gloss is stored as NULL.
func NormalizeGloss(text string) *string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	s := strings.Join(fields, " ")
	return &s
}
