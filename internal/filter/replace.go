package filter

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// replacementFor computes the substitute text for a matched dictionary key
func (f *Filter) replacementFor(key string) string {
	switch f.method {
	case MethodWord:
		return f.wordReplacement(key)
	case MethodGrawlix:
		return f.grawlixReplacement(key)
	default:
		return starsReplacement(key)
	}
}

func starsReplacement(key string) string {
	return strings.Repeat("*", utf8.RuneCountInString(key))
}

// wordReplacement looks up the configured text. Keys missing from the
// dictionary or stored with blank text fall back to DefaultReplacement.
func (f *Filter) wordReplacement(key string) string {
	if text, ok := f.dictionary[normalizeWord(key)]; ok && text != "" {
		return text
	}

	f.logger.Warn("No replacement text configured for word",
		zap.String("word", key),
		zap.String("fallback", DefaultReplacement),
	)
	return DefaultReplacement
}

// grawlixReplacement samples one palette entry per character of key.
// An empty palette degrades to the stars method.
func (f *Filter) grawlixReplacement(key string) string {
	if len(f.grawlixChars) == 0 {
		return starsReplacement(key)
	}

	n := utf8.RuneCountInString(key)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(f.grawlixChars[f.intN(len(f.grawlixChars))])
	}
	return b.String()
}

func (f *Filter) intN(n int) int {
	if f.rnd != nil {
		return f.rnd.IntN(n)
	}
	return rand.IntN(n)
}
