// Package textutil holds small text presentation helpers shared by the CLI
// and status rendering.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName converts an identifier such as "wes-anderson", "golden_hour",
// or "imageGen" into a human-readable title like "Wes Anderson".
func DisplayName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	var words strings.Builder
	prevLower := false
	for _, r := range trimmed {
		switch {
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			words.WriteRune(' ')
			prevLower = false
		case unicode.IsUpper(r) && prevLower:
			words.WriteRune(' ')
			words.WriteRune(r)
			prevLower = false
		default:
			words.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsNumber(r)
		}
	}
	return cases.Title(language.Und).String(strings.Join(strings.Fields(words.String()), " "))
}

// Truncate shortens a string to max runes, appending an ellipsis when cut.
func Truncate(value string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
