package core

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextFormat is a transformation applied to text on copy or paste.
type TextFormat string

const (
	FormatPlain TextFormat = "plain"
	FormatUpper TextFormat = "upper"
	FormatLower TextFormat = "lower"
	FormatTitle TextFormat = "title"
	FormatTrim  TextFormat = "trim"
)

// ParseFormat converts a string to a TextFormat, defaulting to FormatPlain.
func ParseFormat(s string) TextFormat {
	switch f := TextFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatUpper, FormatLower, FormatTitle, FormatTrim:
		return f
	default:
		return FormatPlain
	}
}

// Format applies f to text. Title case upper-cases the first rune of each
// whitespace-separated word, lowercases the rest of it, and joins words with
// single spaces. Hyphens and dots inside a word are not word boundaries.
func Format(text string, f TextFormat) string {
	switch f {
	case FormatUpper:
		return cases.Upper(language.Und).String(text)
	case FormatLower:
		return cases.Lower(language.Und).String(text)
	case FormatTitle:
		upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)
		words := strings.Fields(text)
		for i, w := range words {
			_, n := utf8.DecodeRuneInString(w)
			words[i] = upper.String(w[:n]) + lower.String(w[n:])
		}
		return strings.Join(words, " ")
	case FormatTrim:
		return strings.TrimSpace(text)
	default:
		return text
	}
}
