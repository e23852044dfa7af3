package filter

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultReplacement is stored for words added without replacement text
const DefaultReplacement = "BLEEP"

// DefaultGrawlixChars is the symbol palette used until SetGrawlixChars is called
var DefaultGrawlixChars = []string{"!", "@", "#", "$", "%", "&", "*"}

// ErrInvalidMethod is returned when selecting an unregistered replacement method
var ErrInvalidMethod = errors.New("replacement method not valid")

// Method selects how a matched word is replaced
type Method int

const (
	// MethodStars masks the word with '*', one per character
	MethodStars Method = iota
	// MethodWord substitutes the replacement text configured in the dictionary
	MethodWord
	// MethodGrawlix substitutes random characters from the symbol palette
	MethodGrawlix
)

// String returns the registered name of the method
func (m Method) String() string {
	switch m {
	case MethodStars:
		return "stars"
	case MethodWord:
		return "word"
	case MethodGrawlix:
		return "grawlix"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod resolves a method name. The descriptive aliases
// mask, fixed-word and random-symbols are accepted as well.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stars", "mask":
		return MethodStars, nil
	case "word", "fixed-word":
		return MethodWord, nil
	case "grawlix", "random-symbols":
		return MethodGrawlix, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, name)
	}
}

// SanitizeResult contains the outcome of a strict sanitize pass
type SanitizeResult struct {
	BadWords []string `json:"badWords"`
	Found    int      `json:"found"`
	Result   string   `json:"result"`
}

// DebugInfo is a snapshot of the filter state
type DebugInfo struct {
	Dictionary        map[string]string `json:"dictionary"`
	ReplacementMethod string            `json:"replacementMethod"`
	GrawlixChars      []string          `json:"grawlixChars"`
}
