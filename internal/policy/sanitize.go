package policy

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanText strips markup from free text entered by users and admins, trims it and
// caps it at maxLen runes. The result is plain text, not HTML.
func CleanText(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen])
	}
	return s
}
