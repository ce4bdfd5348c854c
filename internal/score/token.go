package score

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// marker maps a set of suffix substrings to the category they select.
type marker struct {
	category Category
	needles  []string
}

// markers are checked in order; the first set with a match wins, so a token
// carrying both a DNF and a retirement marker scores as DNF.
var markers = []marker{
	{category: CategoryDNF, needles: []string{"x", "초", "초사"}},
	{category: CategoryRetired, needles: []string{"re", "리", "리타"}},
}

// Normalize returns the form of token that parsing depends on: NFC,
// lower-cased, with every whitespace rune removed.
//
// NFC matters for the Hangul markers: a decomposed "리" would otherwise
// never match.
func Normalize(token string) string {
	s := norm.NFC.String(token)
	s = cases.Lower(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseToken turns a rank entry such as "1", "2re", "3x" or "4 리" into an
// Outcome.
//
// The token must start with a decimal rank in 1..8. Anything after the
// digits is scanned for category markers; unrecognized text is ignored.
func ParseToken(token string) (Outcome, error) {
	t := Normalize(token)
	if t == "" {
		return Outcome{}, NewInvalidToken(token, "empty token")
	}

	end := 0
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == 0 {
		return Outcome{}, NewInvalidToken(token, "token must start with a rank number (1-8)")
	}

	rank, err := strconv.Atoi(t[:end])
	if err != nil || rank < MinRank || rank > MaxRank {
		return Outcome{}, NewInvalidToken(token, "rank must be 1-8")
	}

	o := Outcome{Rank: rank}
	switch classify(t[end:]) {
	case CategoryDNF:
		o.DNF = true
	case CategoryRetired:
		o.Retired = true
	}
	return o, nil
}

// classify returns the category selected by a normalized suffix.
func classify(suffix string) Category {
	for _, m := range markers {
		for _, needle := range m.needles {
			if strings.Contains(suffix, needle) {
				return m.category
			}
		}
	}
	return CategoryGoal
}
