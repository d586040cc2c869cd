package linguistic

import (
	"errors"
	"fmt"
	"strings"

	snowballstem "github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/kljensen/snowball"
)

const (
	// Portuguese is the default document language, stemmed with the
	// snowballstem Portuguese stemmer.
	Portuguese = "portuguese"

	// English documents are stemmed with the snowball Porter2 stemmer.
	English = "english"
)

// ErrUnsupportedLanguage is returned for a language no stemmer covers.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// snowballLanguages lists the languages the kljensen/snowball package
// stems.
var snowballLanguages = map[string]struct{}{
	English:     {},
	"spanish":   {},
	"french":    {},
	"russian":   {},
	"swedish":   {},
	"norwegian": {},
	"hungarian": {},
}

// Stemmer reduces words to a comparable stem for one language.
type Stemmer struct {
	language string
}

// NewStemmer returns a Stemmer for language.
func NewStemmer(language string) (*Stemmer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = Portuguese
	}

	_, ok := snowballLanguages[language]
	if !ok && language != Portuguese {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	return &Stemmer{language: language}, nil
}

// Language returns the language the stemmer was built for.
func (s *Stemmer) Language() string {
	return s.language
}

// Stem returns the stem of a lower-cased word. Words the stemmer chokes on
// are returned unchanged.
func (s *Stemmer) Stem(word string) string {
	if s.language == Portuguese {
		env := snowballstem.NewEnv(word)
		portuguese.Stem(env)

		return env.Current()
	}

	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil {
		return word
	}

	return stemmed
}
