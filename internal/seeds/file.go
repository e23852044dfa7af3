package seeds

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileFormat represents a supported seed file format
type FileFormat string

const (
	FormatJSON    FileFormat = "json"
	FormatYAML    FileFormat = "yaml"
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
)

// searchOrder is the order in which FileProvider probes extensions
var searchOrder = []string{".json", ".yaml", ".yml", ".csv", ".parquet"}

// DetectFileFormat detects the seed format from the file extension
func DetectFileFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported seed file format: %s", filename)
	}
}

// FileProvider loads seeds from <dir>/<name>.<ext>
type FileProvider struct {
	dir    string
	logger *zap.Logger
}

// NewFileProvider creates a provider reading seed files from dir
func NewFileProvider(dir string, logger *zap.Logger) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{dir: dir, logger: logger}
}

// Load reads the first seed file named name with a supported extension
func (p *FileProvider) Load(_ context.Context, name string) (map[string]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	for _, ext := range searchOrder {
		path := filepath.Join(p.dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat seed file: %w", err)
		}

		dict, err := ReadFile(path)
		if err != nil {
			return nil, err
		}

		p.logger.Debug("Seed file loaded",
			zap.String("path", path),
			zap.Int("words", len(dict)),
		)
		return dict, nil
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrSeedNotFound, name, p.dir)
}

// Save writes the seed as <dir>/<name>.json
func (p *FileProvider) Save(_ context.Context, name string, dict map[string]string) error {
	if err := validName(name); err != nil {
		return err
	}
	return WriteFile(filepath.Join(p.dir, name+".json"), dict)
}

// ReadFile reads a seed file in any supported format
func ReadFile(path string) (map[string]string, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		var dict map[string]string
		if err := json.NewDecoder(file).Decode(&dict); err != nil {
			return nil, fmt.Errorf("JSON seed decoding failed: %w", err)
		}
		return dict, nil
	case FormatYAML:
		var dict map[string]string
		if err := yaml.NewDecoder(file).Decode(&dict); err != nil {
			return nil, fmt.Errorf("YAML seed decoding failed: %w", err)
		}
		return dict, nil
	case FormatCSV:
		entries, err := readCSV(file)
		if err != nil {
			return nil, fmt.Errorf("CSV seed decoding failed: %w", err)
		}
		return FromEntries(entries), nil
	default:
		entries, err := readParquet(file)
		if err != nil {
			return nil, fmt.Errorf("Parquet seed decoding failed: %w", err)
		}
		return FromEntries(entries), nil
	}
}

// readCSV expects a header with a word column and an optional replacement column
func readCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	wordCol := slices.Index(header, "word")
	if wordCol < 0 {
		return nil, errors.New("missing word column")
	}
	replacementCol := slices.Index(header, "replacement")

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if wordCol >= len(record) {
			continue
		}
		entry := Entry{Word: record[wordCol]}
		if replacementCol >= 0 && replacementCol < len(record) {
			entry.Replacement = record[replacementCol]
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func readParquet(file *os.File) ([]Entry, error) {
	reader := parquet.NewReader(file)
	defer reader.Close()

	var entries []Entry
	for {
		var entry Entry
		err := reader.Read(&entry)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// WriteFile writes dict in the format implied by the path extension
func WriteFile(path string, dict map[string]string) error {
	format, err := DetectFileFormat(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer file.Close()

	entries := ToEntries(dict)
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Word, b.Word) })

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		err = enc.Encode(dict)
	case FormatYAML:
		enc := yaml.NewEncoder(file)
		err = enc.Encode(dict)
		if err == nil {
			err = enc.Close()
		}
	case FormatCSV:
		w := csv.NewWriter(file)
		_ = w.Write([]string{"word", "replacement"})
		for _, e := range entries {
			_ = w.Write([]string{e.Word, e.Replacement})
		}
		w.Flush()
		err = w.Error()
	default:
		w := parquet.NewGenericWriter[Entry](file)
		if _, err = w.Write(entries); err == nil {
			err = w.Close()
		}
	}

	if err != nil {
		return fmt.Errorf("failed to write %s seed: %w", format, err)
	}
	return file.Close()
}
