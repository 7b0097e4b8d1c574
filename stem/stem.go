// Package stem reduces action phrases to a canonical lexical form for
// substring matching.
package stem

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// Stemmer returns the stem of one word. Implementations must be pure.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a function to the Stemmer interface.
type StemmerFunc func(word string) string

func (f StemmerFunc) Stem(word string) string { return f(word) }

// Snowball is the Porter2 English stemmer. Stop words are stemmed too.
type Snowball struct{}

var _ Stemmer = Snowball{}

// NewSnowball returns the English snowball stemmer.
func NewSnowball() Snowball {
	return Snowball{}
}

func (Snowball) Stem(word string) string {
	return english.Stem(word, true)
}

// Normalize stems every whitespace delimited word of phrase and joins the
// stems with single spaces.
func Normalize(s Stemmer, phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = s.Stem(w)
	}

	return strings.Join(words, " ")
}

// NormalizeAll normalizes each phrase, keeping order.
func NormalizeAll(s Stemmer, phrases []string) []string {
	stemmed := make([]string, 0, len(phrases))
	for _, p := range phrases {
		stemmed = append(stemmed, Normalize(s, p))
	}

	return stemmed
}
