package seeds

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS seed_words (
	seed        TEXT NOT NULL,
	word        TEXT NOT NULL,
	replacement TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (seed, word)
)`

// DatabaseConfig contains Postgres seed storage configuration
type DatabaseConfig struct {
	URL             string        `yaml:"url" mapstructure:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// PostgresProvider stores seeds as rows of the seed_words table
type PostgresProvider struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresProvider connects to the database and ensures the schema exists
func NewPostgresProvider(config *DatabaseConfig, logger *zap.Logger) (*PostgresProvider, error) {
	db, err := sqlx.Connect("postgres", config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create seed_words table: %w", err)
	}

	logger.Info("Postgres seed provider initialized",
		zap.String("database_url", maskURL(config.URL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
	)

	return &PostgresProvider{db: db, logger: logger}, nil
}

// Load selects every row of the named seed
func (p *PostgresProvider) Load(ctx context.Context, name string) (map[string]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var entries []Entry
	query := `SELECT word, replacement FROM seed_words WHERE seed = $1`
	if err := p.db.SelectContext(ctx, &entries, query, name); err != nil {
		return nil, fmt.Errorf("failed to query seed %s: %w", name, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, name)
	}

	p.logger.Debug("Seed loaded from database", zap.String("seed", name), zap.Int("words", len(entries)))
	return FromEntries(entries), nil
}

// Save replaces all rows of the named seed in one transaction
func (p *PostgresProvider) Save(ctx context.Context, name string, dict map[string]string) error {
	if err := validName(name); err != nil {
		return err
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seed_words WHERE seed = $1`, name); err != nil {
		return fmt.Errorf("failed to clear seed %s: %w", name, err)
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO seed_words (seed, word, replacement) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for word, replacement := range dict {
		if _, err := stmt.ExecContext(ctx, name, word, replacement); err != nil {
			return fmt.Errorf("failed to insert word into seed %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed %s: %w", name, err)
	}

	p.logger.Info("Seed stored in database", zap.String("seed", name), zap.Int("words", len(dict)))
	return nil
}

// Close closes the database connection
func (p *PostgresProvider) Close() error {
	return p.db.Close()
}
