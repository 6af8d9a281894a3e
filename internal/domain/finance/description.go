package finance

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeDescription folds case and strips diacritics so "Pagamento
// Ração" and "PAGAMENTO RACAO" compare equal.
func NormalizeDescription(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// keywords splits a normalized description on whitespace and keeps tokens
// longer than minLen characters
func keywords(normalized string, minLen int) []string {
	fields := strings.Fields(normalized)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minLen {
			out = append(out, f)
		}
	}
	return out
}
