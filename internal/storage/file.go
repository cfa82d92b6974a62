package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/teemow/teamdates/internal/logging"
)

// DefaultFileName is the document name inside the data directory.
const DefaultFileName = "availability.json"

// FileConfig configures the file backend.
type FileConfig struct {
	// Path is the JSON document location (default: $HOME/.teamdates/availability.json)
	Path string
}

// DefaultFilePath returns the default document location.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".teamdates", DefaultFileName)
	}
	return filepath.Join(home, ".teamdates", DefaultFileName)
}

// FileBackend stores the document in one file. Writes go to a temp file that
// is renamed over the target, so readers never see a partial document.
type FileBackend struct {
	path   string
	logger logging.Logger
}

// NewFileBackend creates a file backend for path. The file is not touched
// until the first Load or Save.
func NewFileBackend(path string, logger logging.Logger) (*FileBackend, error) {
	if path == "" {
		path = DefaultFilePath()
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &FileBackend{path: path, logger: logger}, nil
}

// Name implements Backend.
func (b *FileBackend) Name() string { return string(TypeFile) }

// Path returns the document location.
func (b *FileBackend) Path() string { return b.path }

// Load reads the document, creating the directory and an empty document
// when the file does not exist yet.
func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	if err := b.write(emptyDocument); err != nil {
		return nil, err
	}
	b.logger.Info("created availability file", "path", b.path)
	return emptyDocument, nil
}

// Save overwrites the document.
func (b *FileBackend) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.write(data)
}

// Ping checks that the data directory exists or could be created under its
// nearest existing ancestor. It never touches the filesystem.
func (b *FileBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// A missing directory is fine as long as Load could create it.
	dir := filepath.Dir(b.path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("data directory %s: not a directory", dir)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("data directory %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return fmt.Errorf("data directory %s: %w", dir, err)
		}
		dir = parent
	}
}

func (b *FileBackend) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}
