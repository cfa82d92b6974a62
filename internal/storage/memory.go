package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps the document in memory.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWithData returns a backend preloaded with data.
func NewMemoryBackendWithData(data []byte) *MemoryBackend {
	b := &MemoryBackend{}
	b.data = append([]byte(nil), data...)
	return b
}

// Name implements Backend.
func (b *MemoryBackend) Name() string { return string(TypeMemory) }

// Load returns a copy of the stored document, or an empty document.
func (b *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loadErr != nil {
		return nil, b.loadErr
	}
	if b.data == nil {
		b.data = append([]byte(nil), emptyDocument...)
	}
	return append([]byte(nil), b.data...), nil
}

// Save replaces the stored document.
func (b *MemoryBackend) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.saveErr != nil {
		return b.saveErr
	}
	b.data = append([]byte(nil), data...)
	return nil
}

// Bytes returns a copy of the current document.
func (b *MemoryBackend) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// FailLoad makes subsequent loads return err. Pass nil to clear.
func (b *MemoryBackend) FailLoad(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadErr = err
}

// FailSave makes subsequent saves return err. Pass nil to clear.
func (b *MemoryBackend) FailSave(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}
