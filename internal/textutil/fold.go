// Package textutil holds the small string normalisations shared by the
// synthetic source and the CSV export.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// FoldAccents strips combining marks, so "Café Niño" becomes "Cafe Nino".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slug lower-cases s, drops everything but letters, digits and spaces, and
// joins the words with dashes.
func Slug(s string) string {
	clean := nonSlug.ReplaceAllString(strings.ToLower(FoldAccents(s)), "")
	return whitespace.ReplaceAllString(clean, "-")
}

// Dashed replaces every non-alphanumeric character with a dash.
func Dashed(s string) string {
	return nonAlnum.ReplaceAllString(FoldAccents(s), "-")
}

// Capitalize upper-cases the first letter of every space separated word.
func Capitalize(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
