package filter

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raaihank/wordguard/internal/seeds"
	"go.uber.org/zap"
)

// Filter holds a dictionary of banned words together with the active
// replacement method and symbol palette. A Filter is not safe for
// concurrent use; callers sharing one must synchronize access.
type Filter struct {
	dictionary   map[string]string
	method       Method
	grawlixChars []string
	patterns     map[string]*regexp.Regexp
	provider     seeds.Provider
	rnd          *rand.Rand
	logger       *zap.Logger
}

// Option configures a Filter
type Option func(*Filter)

// WithLogger sets the logger used for warnings
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithProvider sets the seed provider consulted by SeedNamed
func WithProvider(provider seeds.Provider) Option {
	return func(f *Filter) {
		if provider != nil {
			f.provider = provider
		}
	}
}

// WithRand sets the random source for the grawlix method
func WithRand(rnd *rand.Rand) Option {
	return func(f *Filter) {
		f.rnd = rnd
	}
}

// New creates a filter with an empty dictionary and the stars method
func New(opts ...Option) *Filter {
	f := &Filter{
		dictionary:   make(map[string]string),
		method:       MethodStars,
		grawlixChars: slices.Clone(DefaultGrawlixChars),
		patterns:     make(map[string]*regexp.Regexp),
		provider:     seeds.NewEmbeddedProvider(),
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Seed replaces the whole dictionary with a copy of dict
func (f *Filter) Seed(dict map[string]string) *Filter {
	next := make(map[string]string, len(dict))
	for word, replacement := range dict {
		key := normalizeWord(word)
		if key == "" {
			continue
		}
		next[key] = replacement
	}

	f.dictionary = next
	clear(f.patterns)
	return f
}

// SeedNamed replaces the dictionary with the named seed from the provider.
// A seed that cannot be loaded is reported as a warning and the current
// dictionary is kept.
func (f *Filter) SeedNamed(ctx context.Context, name string) *Filter {
	dict, err := f.provider.Load(ctx, name)
	if err != nil {
		f.logger.Warn("Couldn't load profanity filter seed",
			zap.String("seed", name),
			zap.Error(err),
		)
		return f
	}

	f.logger.Debug("Seed loaded",
		zap.String("seed", name),
		zap.Int("words", len(dict)),
	)
	return f.Seed(dict)
}

// AddWord adds or overwrites a dictionary entry. Without replacement text
// DefaultReplacement is stored.
func (f *Filter) AddWord(word string, replacement ...string) *Filter {
	key := normalizeWord(word)
	if key == "" {
		return f
	}

	text := DefaultReplacement
	if len(replacement) > 0 && replacement[0] != "" {
		text = replacement[0]
	}

	f.dictionary[key] = text
	return f
}

// RemoveWord deletes a dictionary entry if present
func (f *Filter) RemoveWord(word string) *Filter {
	key := normalizeWord(word)
	delete(f.dictionary, key)
	delete(f.patterns, key)
	return f
}

// SetReplacementMethod switches the active method by name. Unknown names
// leave the filter unchanged and return ErrInvalidMethod.
func (f *Filter) SetReplacementMethod(name string) (*Filter, error) {
	method, err := ParseMethod(name)
	if err != nil {
		return f, err
	}

	f.method = method
	return f, nil
}

// Method returns the active replacement method
func (f *Filter) Method() Method {
	return f.method
}

// SetGrawlixChars replaces the symbol palette
func (f *Filter) SetGrawlixChars(chars []string) *Filter {
	f.grawlixChars = slices.Clone(chars)
	return f
}

// Len returns the number of dictionary entries
func (f *Filter) Len() int {
	return len(f.dictionary)
}

// GetDefaults returns the bundled default dictionary
func (f *Filter) GetDefaults(ctx context.Context) (map[string]string, error) {
	dict, err := seeds.NewEmbeddedProvider().Load(ctx, seeds.DefaultSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to load default seed: %w", err)
	}
	return dict, nil
}

// Debug returns a copy of the dictionary, method and palette
func (f *Filter) Debug() DebugInfo {
	return DebugInfo{
		Dictionary:        maps.Clone(f.dictionary),
		ReplacementMethod: f.method.String(),
		GrawlixChars:      slices.Clone(f.grawlixChars),
	}
}

// keys returns dictionary keys longest first so phrases win over the words
// they contain; ties are ordered lexically.
func (f *Filter) keys() []string {
	keys := slices.Collect(maps.Keys(f.dictionary))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

// pattern returns the compiled case-insensitive pattern for key
func (f *Filter) pattern(key string) (*regexp.Regexp, error) {
	if re, ok := f.patterns[key]; ok {
		return re, nil
	}

	// Invalid bytes become U+FFFD, which is how regexp decodes them in text
	re, err := regexp.Compile("(?i)" + string([]rune(EscapeWord(key))))
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern for %q: %w", key, err)
	}

	f.patterns[key] = re
	return re, nil
}

// normalizeWord lowercases word, keeping invalid UTF-8 bytes as they are
func normalizeWord(word string) string {
	if utf8.ValidString(word) {
		return strings.ToLower(word)
	}

	var b strings.Builder
	for i := 0; i < len(word); {
		r, size := utf8.DecodeRuneInString(word[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(word[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		i += size
	}
	return b.String()
}
