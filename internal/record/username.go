package record

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// umlautFolds maps German umlauts to their two-letter forms. These must
// be folded before the generic diacritic strip, which would otherwise
// collapse ä to a instead of ae.
var umlautFolds = strings.NewReplacer(
	"ä", "ae", "Ä", "Ae",
	"ö", "oe", "Ö", "Oe",
	"ü", "ue", "Ü", "Ue",
	"ß", "ss",
)

// deaccent removes combining marks after NFD decomposition.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldUmlauts replaces German umlauts and ß with their ASCII spellings
// and strips any remaining diacritics.
func FoldUmlauts(s string) string {
	s = umlautFolds.Replace(s)
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return folded
}

// DeriveUsername builds the default login for a person: first letter of
// the first name joined with the last name, lowercased, spaces removed,
// umlauts folded. Returns "" when both names are empty.
func DeriveUsername(firstName, lastName string) string {
	first := strings.TrimSpace(firstName)
	if first != "" {
		first = string([]rune(first)[:1])
	}
	raw := strings.ToLower(first + lastName)
	raw = strings.ReplaceAll(raw, " ", "")
	return FoldUmlauts(raw)
}
