package seeds

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultSeed is the name of the bundled default dictionary
const DefaultSeed = "profanity"

// ErrSeedNotFound is returned when a provider has no seed with the requested name
var ErrSeedNotFound = errors.New("seed not found")

// Provider resolves a named seed into a word to replacement mapping
type Provider interface {
	Load(ctx context.Context, name string) (map[string]string, error)
}

// Store is implemented by providers that can persist seeds
type Store interface {
	Provider
	Save(ctx context.Context, name string, dict map[string]string) error
}

// Entry is a single seed row as stored in tabular formats
type Entry struct {
	Word        string `csv:"word" parquet:"word" json:"word" db:"word"`
	Replacement string `csv:"replacement" parquet:"replacement" json:"replacement" db:"replacement"`
}

// ChainProvider asks each provider in turn and returns the first seed found
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider creates a provider that falls through the given providers
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// Load returns the seed from the first provider that has it
func (c *ChainProvider) Load(ctx context.Context, name string) (map[string]string, error) {
	var errs []error
	for _, p := range c.providers {
		dict, err := p.Load(ctx, name)
		if err == nil {
			return dict, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, name)
	}
	return nil, errors.Join(errs...)
}

// FromEntries converts seed rows into a dictionary, skipping blank words
func FromEntries(entries []Entry) map[string]string {
	dict := make(map[string]string, len(entries))
	for _, e := range entries {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		dict[word] = strings.TrimSpace(e.Replacement)
	}
	return dict
}

// ToEntries converts a dictionary into seed rows
func ToEntries(dict map[string]string) []Entry {
	entries := make([]Entry, 0, len(dict))
	for word, replacement := range dict {
		entries = append(entries, Entry{Word: word, Replacement: replacement})
	}
	return entries
}

// validName rejects names that could escape a seed directory or key space
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\:*?`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid seed name %q", name)
	}
	return nil
}
