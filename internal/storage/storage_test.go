package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  error
	}{
		{
			name:     "default is file",
			cfg:      Config{File: FileConfig{Path: filepath.Join(t.TempDir(), "a.json")}},
			wantName: "file",
		},
		{
			name:     "memory",
			cfg:      Config{Type: TypeMemory},
			wantName: "memory",
		},
		{
			name:     "redis",
			cfg:      Config{Type: TypeRedis, Redis: RedisConfig{Addr: mr.Addr()}},
			wantName: "redis",
		},
		{
			name:    "unknown",
			cfg:     Config{Type: "postgres"},
			wantErr: ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := New(tt.cfg, nil)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, backend.Name())
		})
	}
}
