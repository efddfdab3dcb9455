package serial

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var serialReplacer = strings.NewReplacer(
	".", "",
	"_", "-",
)

// Normalize converts a raw disc identifier into canonical serial form.
// The ISO 9660 version separator and anything after it is dropped, the text
// is uppercased, dots are removed, underscores become hyphens, and trailing
// hyphens and surrounding whitespace are trimmed. Invalid UTF-8 bytes become
// U+FFFD before dots are removed so that no new runes form across them.
func Normalize(raw string) string {
	if idx := strings.IndexByte(raw, ';'); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	replaced := serialReplacer.Replace(strings.ToValidUTF8(raw, "\uFFFD"))
	// Casers carry state, so one is built per call.
	upper := cases.Upper(language.Und).String(replaced)
	out := strings.TrimRightFunc(upper, isTrailingDelimiter)
	return strings.TrimLeftFunc(out, unicode.IsSpace)
}

func isTrailingDelimiter(r rune) bool {
	return r == '-' || unicode.IsSpace(r)
}
