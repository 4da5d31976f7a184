package learning

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"github.com/rivo/uniseg"
)

// ErrUnsupportedLanguage is returned for languages the stemmer does not know
var ErrUnsupportedLanguage = errors.New("unsupported stemming language")

var stemLanguages = map[string]struct{}{
	"english": {},
	"french":  {},
	"russian": {},
	"spanish": {},
	"swedish": {},
}

// SupportedLanguages lists the stemming languages accepted by NewTokenizer
func SupportedLanguages() []string {
	langs := make([]string, 0, len(stemLanguages))
	for lang := range stemLanguages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Tokenizer splits text into lower-cased, stemmed word tokens
type Tokenizer struct {
	language string
}

// NewTokenizer creates a tokenizer stemming in the given language
func NewTokenizer(language string) (*Tokenizer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if _, ok := stemLanguages[language]; !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedLanguage, language, strings.Join(SupportedLanguages(), ", "))
	}
	return &Tokenizer{language: language}, nil
}

// Language returns the stemming language
func (t *Tokenizer) Language() string {
	return t.language
}

// Tokenize returns one token per word occurrence, in text order.
// Repeated words yield repeated tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string

	state := -1
	var segment string
	for len(text) > 0 {
		segment, text, state = uniseg.FirstWordInString(text, state)
		if !isWord(segment) {
			continue
		}
		tokens = append(tokens, t.normalize(segment))
	}

	return tokens
}

func (t *Tokenizer) normalize(word string) string {
	lower := strings.ToLower(word)
	stemmed, err := snowball.Stem(lower, t.language, true)
	if err != nil || stemmed == "" {
		return lower
	}
	return stemmed
}

// isWord reports whether a UAX #29 segment is a word rather than
// whitespace or punctuation
func isWord(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
