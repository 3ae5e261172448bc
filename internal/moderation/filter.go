// Package moderation screens user-written text (usernames, prayer requests)
// for disallowed vocabulary, including leetspeak and letter-spacing tricks.
//
// Matching is whole-word: a disallowed word inside a longer word ("classic")
// never matches. Three views of the normalized input are checked:
//
//   - each whitespace-separated token with its punctuation removed ("p.o.r.r.a")
//   - each alphanumeric run between punctuation ("cu-de")
//   - consecutive single-character runs joined together ("m e r d a")
package moderation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var defaultWords = []string{
	"merda", "bosta", "porra", "caralho", "puta", "putaria", "foda", "foder",
	"cu", "buceta", "penis", "piroca", "pênis", "tesão", "tesao", "cacete",
	"cuzao", "cuzão", "fdp", "pqp", "inferno", "diabo", "satanas", "satanás",
	"droga", "maconha", "cocaina", "cocaína", "crack", "heroina", "heroína",
}

var leet = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"8", "b",
	"@", "a",
	"$", "s",
)

// Filter holds a normalized disallowed-word set. It is safe for concurrent use.
type Filter struct {
	words map[string]struct{}
	// maxLen is the rune length of the longest word; spelled-out windows
	// never need to be longer.
	maxLen int
}

// NewFilter builds a filter from the built-in list plus extra words.
func NewFilter(extra ...string) *Filter {
	f := &Filter{words: make(map[string]struct{}, len(defaultWords)+len(extra))}
	for _, w := range append(append([]string{}, defaultWords...), extra...) {
		if n := collapse(normalize(w)); n != "" {
			f.words[n] = struct{}{}
			f.maxLen = max(f.maxLen, utf8.RuneCountInString(n))
		}
	}
	return f
}

// Default is the filter used by the package-level helpers.
var Default = NewFilter()

func ContainsProfanity(text string) bool {
	return Default.ContainsProfanity(text)
}

// normalize lower-cases, strips diacritics and undoes leetspeak substitutions.
// Punctuation is kept so callers can still see token boundaries.
func normalize(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	return leet.Replace(s)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// collapse drops every non-alphanumeric rune.
func collapse(s string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		return -1
	}, s)
}

func (f *Filter) match(token string) bool {
	if token == "" {
		return false
	}
	_, ok := f.words[token]
	return ok
}

// ContainsProfanity reports whether text contains a disallowed word.
func (f *Filter) ContainsProfanity(text string) bool {
	n := normalize(text)

	for _, field := range strings.Fields(n) {
		if f.match(collapse(field)) {
			return true
		}
	}

	var spelled []string
	for _, run := range strings.FieldsFunc(n, func(r rune) bool { return !isAlnum(r) }) {
		if f.match(run) {
			return true
		}
		if utf8.RuneCountInString(run) == 1 {
			spelled = append(spelled, run)
			continue
		}
		if f.matchSpelled(spelled) {
			return true
		}
		spelled = spelled[:0]
	}
	return f.matchSpelled(spelled)
}

// matchSpelled checks every contiguous window of a run of single characters,
// so "e m e r d a" still finds the word spelled after the leading "e".
// Windows are capped at maxLen letters, keeping the scan linear in the input.
func (f *Filter) matchSpelled(letters []string) bool {
	var b strings.Builder
	for i := range letters {
		b.Reset()
		b.WriteString(letters[i])
		for j := i + 1; j < len(letters) && j-i < f.maxLen; j++ {
			b.WriteString(letters[j])
			if f.match(b.String()) {
				return true
			}
		}
	}
	return false
}
