package config

import (
	"time"

	"github.com/raaihank/wordguard/internal/seeds"
)

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Filter    FilterConfig    `yaml:"filter" mapstructure:"filter"`
	Seeds     SeedsConfig     `yaml:"seeds" mapstructure:"seeds"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// FilterConfig contains the word filter settings applied at startup and on reload
type FilterConfig struct {
	Method       string            `yaml:"method" mapstructure:"method"`               // stars, word or grawlix
	GrawlixChars []string          `yaml:"grawlix_chars" mapstructure:"grawlix_chars"` // empty keeps the current palette
	Seed         string            `yaml:"seed" mapstructure:"seed"`
	Words        map[string]string `yaml:"words" mapstructure:"words"`
}

// SeedsConfig selects where named seeds are resolved from
type SeedsConfig struct {
	Dir   string `yaml:"dir" mapstructure:"dir"`
	Redis struct {
		Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
		seeds.RedisConfig `yaml:",inline" mapstructure:",squash"`
	} `yaml:"redis" mapstructure:"redis"`
	Database struct {
		Enabled              bool `yaml:"enabled" mapstructure:"enabled"`
		seeds.DatabaseConfig `yaml:",inline" mapstructure:",squash"`
	} `yaml:"database" mapstructure:"database"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains detection event stream configuration
type WebSocketConfig struct {
	Enabled              bool   `yaml:"enabled" mapstructure:"enabled"`
	Path                 string `yaml:"path" mapstructure:"path"`
	BroadcastDetections  bool   `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
	BroadcastConnections bool   `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	Username             string `yaml:"username" mapstructure:"username"`
	Password             string `yaml:"password" mapstructure:"password"`
}

// RateLimitConfig contains API rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Filter: FilterConfig{
			Method: "stars",
			Seed:   seeds.DefaultSeed,
		},
		Seeds: SeedsConfig{
			Dir: "seeds",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:              true,
			Path:                 "/ws",
			BroadcastDetections:  true,
			BroadcastConnections: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}

	cfg.Seeds.Redis.URL = "redis://localhost:6379/0"
	cfg.Seeds.Redis.MaxConnections = 10
	cfg.Seeds.Redis.KeyPrefix = "wordguard"
	cfg.Seeds.Database.URL = "postgres://localhost:5432/wordguard?sslmode=disable"
	cfg.Seeds.Database.MaxOpenConns = 5
	cfg.Seeds.Database.MaxIdleConns = 2
	cfg.Seeds.Database.ConnMaxLifetime = 30 * time.Minute
	cfg.Logging.File.Path = "logs/wordguard.log"

	return cfg
}
