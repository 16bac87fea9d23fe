// Package tokenize derives search tokens and URL slugs from localized
// display names. Vietnamese diacritics are stripped so "Điện thoại" and
// "dien thoai" match the same tokens.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveAccents strips combining marks and maps đ/Đ, which survive NFD
// decomposition, onto their ASCII counterparts.
func RemoveAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "đ", "d")
	return strings.ReplaceAll(out, "Đ", "D")
}

// Tokenize lowercases, strips accents and punctuation, and splits on
// whitespace. Empty tokens are dropped.
func Tokenize(s string) []string {
	clean := strings.ToLower(RemoveAccents(s))
	clean = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, clean)
	return strings.Fields(clean)
}

// Slugify joins the tokens of s with hyphens.
func Slugify(s string) string {
	return strings.Join(Tokenize(s), "-")
}
