// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Whitespace includes Unicode separators such as U+00A0 and U+FEFF.
	nonWord    = regexp.MustCompile(`[^\w\s\v\p{Z}\x{FEFF}]`)
	whitespace = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
)

// Make lowercases name, strips diacritics, drops non-word characters and
// joins the remaining words with hyphens. It is pure: the same name always
// yields the same slug.
func Make(name string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	folded = nonWord.ReplaceAllString(folded, "")
	return strings.Trim(whitespace.ReplaceAllString(folded, "-"), "-")
}
