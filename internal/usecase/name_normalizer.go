package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticFolds = strings.NewReplacer(
	"ı", "i",
	"ß", "ss",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
)

var clubTokens = map[string]struct{}{
	"fc": {}, "sk": {}, "afc": {}, "cf": {}, "sc": {}, "ac": {}, "fk": {}, "cd": {},
	"ssc": {}, "united": {}, "utd": {}, "club": {}, "if": {}, "bk": {}, "sv": {},
	"as": {}, "us": {}, "nk": {}, "jk": {}, "ud": {}, "ca": {},
}

// Spellings that differ across feeds after diacritic folding.
var nameEquivalences = map[string]string{
	"munchen":   "munich",
	"munih":     "munich",
	"muenchen":  "munich",
	"koln":      "cologne",
	"koeln":     "cologne",
	"lisboa":    "lisbon",
	"praha":     "prague",
	"milano":    "milan",
	"roma":      "rome",
	"torino":    "turin",
	"sevilla":   "seville",
	"kobenhavn": "copenhagen",
}

// FoldDiacritics lowercases and strips combining marks.
func FoldDiacritics(value string) string {
	lowered := diacriticFolds.Replace(strings.ToLower(value))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// NormalizeTeamName produces the comparison form used by the correlator:
// folded, club tokens removed and known city spellings unified.
func NormalizeTeamName(name string) string {
	folded := FoldDiacritics(name)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(words))
	for _, word := range words {
		if _, isClub := clubTokens[word]; isClub {
			continue
		}
		if canonical, ok := nameEquivalences[word]; ok {
			word = canonical
		}
		out = append(out, word)
	}
	if len(out) == 0 {
		return strings.Join(words, " ")
	}
	return strings.Join(out, " ")
}

// compactName folds diacritics and drops every non-alphanumeric rune.
func compactName(name string) string {
	folded := FoldDiacritics(name)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// namesMatch is the live-context name test: equal leading prefix of
// prefixLen runes or containment either way.
func namesMatch(raw, candidate string, prefixLen int) bool {
	a := compactName(raw)
	b := compactName(candidate)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	ar := []rune(a)
	br := []rune(b)
	if prefixLen <= 0 || len(ar) < prefixLen || len(br) < prefixLen {
		return false
	}
	return string(ar[:prefixLen]) == string(br[:prefixLen])
}
