package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "Ácido" and "acido" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// matcher tests whether any field contains the folded needle.
type matcher struct {
	needle string
}

func newMatcher(search string) matcher {
	return matcher{needle: Fold(strings.TrimSpace(search))}
}

func (m matcher) empty() bool {
	return m.needle == ""
}

func (m matcher) any(fields ...string) bool {
	if m.empty() {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), m.needle) {
			return true
		}
	}
	return false
}

// newNameCollator orders names the way a Portuguese speaker expects.
// Collators are not safe for concurrent use; create one per sort.
func newNameCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
}
