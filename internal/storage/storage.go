package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/teemow/teamdates/internal/logging"
)

// Type identifies a storage backend implementation.
type Type string

const (
	// TypeFile stores the document in a single JSON file on local disk.
	TypeFile Type = "file"

	// TypeMemory keeps the document in process memory. Used in tests.
	TypeMemory Type = "memory"

	// TypeRedis stores the document under a single Redis key.
	TypeRedis Type = "redis"
)

// ErrUnknownBackend is returned by New for an unsupported backend type.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend persists the availability document as an opaque byte slice.
// The availability store owns encoding, so backends only move bytes.
//
// Load must return a usable document when nothing has been stored yet,
// creating one if the backend needs it. Save overwrites the whole document.
type Backend interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// emptyDocument is written when a backend is first accessed.
var emptyDocument = []byte("{}")

// Config selects and configures a backend.
type Config struct {
	// Type is the backend type (default: file)
	Type Type

	File  FileConfig
	Redis RedisConfig
}

// New creates the backend described by cfg.
func New(cfg Config, logger logging.Logger) (Backend, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	switch cfg.Type {
	case "", TypeFile:
		return NewFileBackend(cfg.File.Path, logger)
	case TypeMemory:
		return NewMemoryBackend(), nil
	case TypeRedis:
		return NewRedisBackend(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("%w: %q (supported: file, memory, redis)", ErrUnknownBackend, cfg.Type)
	}
}
