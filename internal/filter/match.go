package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// metaChars are the characters that are significant in a word pattern
const metaChars = `.?*+^$[]\(){}|-`

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// EscapeWord escapes pattern metacharacters in word. Other bytes, including
// invalid UTF-8, are copied unchanged.
func EscapeWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		if strings.IndexByte(metaChars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Clean replaces the first case-insensitive occurrence of each dictionary
// word in text. Words are matched as plain substrings, so they are also
// found inside longer words, and repeated occurrences of a word survive.
func (f *Filter) Clean(text string) string {
	for _, key := range f.keys() {
		re, err := f.pattern(key)
		if err != nil {
			f.logger.Warn("Skipping word", zap.String("word", key), zap.Error(err))
			continue
		}

		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}

		text = text[:loc[0]] + f.replacementFor(key) + text[loc[1]:]
	}

	return text
}

// Sanitize replaces every whole-word occurrence of each dictionary word in
// text. When anything matched, HTML-like tags are replaced by a space in
// the final result.
func (f *Filter) Sanitize(text string) SanitizeResult {
	result := SanitizeResult{
		BadWords: []string{},
		Result:   text,
	}

	for _, key := range f.keys() {
		re, err := f.pattern(key)
		if err != nil {
			f.logger.Warn("Skipping word", zap.String("word", key), zap.Error(err))
			continue
		}

		replaced, count := f.replaceBounded(result.Result, key, re)
		if count == 0 {
			continue
		}

		result.BadWords = append(result.BadWords, EscapeWord(key))
		result.Found += count
		result.Result = replaced
	}

	if result.Found > 0 {
		result.Result = tagPattern.ReplaceAllString(result.Result, " ")
	}

	return result
}

// replaceBounded copies text into a new string, substituting each match of
// re that is flanked by non-word characters or the ends of text. Delimiters
// are never consumed, so adjacent occurrences are all replaced.
func (f *Filter) replaceBounded(text, key string, re *regexp.Regexp) (string, int) {
	var b strings.Builder
	count, last, pos := 0, 0, 0

	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}

		start, end := pos+loc[0], pos+loc[1]
		if start == end {
			break
		}

		if !boundaryBefore(text, start) || !boundaryAfter(text, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(f.replacementFor(key))
		count++
		last, pos = end, end
	}

	if count == 0 {
		return text, 0
	}

	b.WriteString(text[last:])
	return b.String(), count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordChar(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordChar(r)
}

// isWordChar reports whether r is an ASCII letter, digit or underscore
func isWordChar(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}
