package validators

import (
	"strings"
	"unicode/utf8"
)

// Sanitizer is implemented by request bodies that normalise free text before
// validation runs.
type Sanitizer interface {
	Sanitize()
}

// SanitizeString trims surrounding whitespace and caps the result at maxLen
// runes. Control characters other than newline and tab are dropped.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 && utf8.RuneCountInString(cleaned) > maxLen {
		runes := []rune(cleaned)
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}

// SanitizeOptional applies SanitizeString through a pointer; blank values become nil.
func SanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	cleaned := SanitizeString(*input, maxLen)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
