package seeds

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed data/*.json
var bundled embed.FS

// EmbeddedProvider serves the seeds compiled into the binary
type EmbeddedProvider struct {
	fsys fs.FS
}

// NewEmbeddedProvider creates a provider over the bundled seeds
func NewEmbeddedProvider() *EmbeddedProvider {
	return &EmbeddedProvider{fsys: bundled}
}

// Load decodes data/<name>.json
func (p *EmbeddedProvider) Load(_ context.Context, name string) (map[string]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(p.fsys, "data/"+name+".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, name)
		}
		return nil, fmt.Errorf("failed to read bundled seed %s: %w", name, err)
	}

	var dict map[string]string
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to decode bundled seed %s: %w", name, err)
	}

	return dict, nil
}

// Names lists the bundled seeds
func (p *EmbeddedProvider) Names() ([]string, error) {
	matches, err := fs.Glob(p.fsys, "data/*.json")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[len("data/"):len(m)-len(".json")])
	}
	return names, nil
}
