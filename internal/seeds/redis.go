package seeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisConfig contains Redis seed storage configuration
type RedisConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	KeyPrefix      string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// RedisProvider stores each seed as a hash of word to replacement
type RedisProvider struct {
	client *redis.Client
	config *RedisConfig
	logger *zap.Logger
}

// NewRedisProvider connects to Redis and verifies the connection
func NewRedisProvider(config *RedisConfig, logger *zap.Logger) (*RedisProvider, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.MaxConnections > 0 {
		opts.PoolSize = config.MaxConnections
	}
	opts.MinIdleConns = config.MinIdleConns

	provider := &RedisProvider{
		client: redis.NewClient(opts),
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := provider.client.Ping(ctx).Err(); err != nil {
		provider.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis seed provider initialized",
		zap.String("redis_url", maskURL(config.URL)),
		zap.String("key_prefix", config.KeyPrefix),
	)

	return provider, nil
}

// Load reads the seed hash
func (p *RedisProvider) Load(ctx context.Context, name string) (map[string]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	key := seedKey(p.config.KeyPrefix, name)
	dict, err := p.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seed %s from Redis: %w", name, err)
	}
	if len(dict) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, key)
	}

	p.logger.Debug("Seed loaded from Redis", zap.String("key", key), zap.Int("words", len(dict)))
	return dict, nil
}

// Save replaces the seed hash atomically
func (p *RedisProvider) Save(ctx context.Context, name string, dict map[string]string) error {
	if err := validName(name); err != nil {
		return err
	}

	key := seedKey(p.config.KeyPrefix, name)
	values := make(map[string]interface{}, len(dict))
	for word, replacement := range dict {
		values[word] = replacement
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(values) > 0 {
		pipe.HSet(ctx, key, values)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error("Failed to store seed in Redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store seed %s: %w", name, err)
	}

	p.logger.Info("Seed stored in Redis", zap.String("key", key), zap.Int("words", len(dict)))
	return nil
}

// Close closes the Redis connection
func (p *RedisProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func seedKey(prefix, name string) string {
	if prefix == "" {
		return "seed:" + name
	}
	return prefix + ":seed:" + name
}

// maskURL hides the password of a connection URL for logging
func maskURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}

	userinfo := url[:at]
	colon := strings.LastIndex(userinfo, ":")
	scheme := strings.Index(userinfo, "://")
	if colon < 0 || colon <= scheme+2 {
		return url
	}
	return userinfo[:colon+1] + "***" + url[at:]
}
