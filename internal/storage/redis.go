package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/teemow/teamdates/internal/logging"
)

const (
	// DefaultRedisAddr is used when no address is configured.
	DefaultRedisAddr = "localhost:6379"

	// DefaultRedisKey is the key holding the availability document.
	DefaultRedisKey = "teamdates:availability"
)

// RedisConfig configures the redis backend.
type RedisConfig struct {
	// Addr is the server address (default: localhost:6379)
	Addr string

	// Password is the optional AUTH password
	Password string

	// DB is the database number (default: 0)
	DB int

	// Key holds the document (default: teamdates:availability)
	Key string
}

// RedisBackend stores the document as a single string value, which lets a
// team share one record without a shared filesystem.
type RedisBackend struct {
	client *redis.Client
	key    string
	logger logging.Logger
}

// NewRedisBackend creates a client for cfg. No connection is made until the
// first command.
func NewRedisBackend(cfg RedisConfig, logger logging.Logger) (*RedisBackend, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultRedisAddr
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis db must be >= 0, got %d", cfg.DB)
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisBackend{client: client, key: cfg.Key, logger: logger}, nil
}

// Name implements Backend.
func (b *RedisBackend) Name() string { return string(TypeRedis) }

// Key returns the key holding the document.
func (b *RedisBackend) Key() string { return b.key }

// Load fetches the document, seeding the key with an empty document when it
// does not exist.
func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get %s: %w", b.key, err)
	}

	// SETNX so a concurrent writer's document is not replaced.
	created, err := b.client.SetNX(ctx, b.key, emptyDocument, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis init %s: %w", b.key, err)
	}
	if !created {
		return b.get(ctx)
	}
	b.logger.Info("created availability key", "key", b.key)
	return emptyDocument, nil
}

// get reads the key, wrapping every failure including redis.Nil.
func (b *RedisBackend) get(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", b.key, err)
	}
	return data, nil
}

// Save overwrites the document.
func (b *RedisBackend) Save(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.key, err)
	}
	return nil
}

// Ping checks the connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close releases the client.
func (b *RedisBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
