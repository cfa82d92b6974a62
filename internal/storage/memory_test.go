package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, b.Save(ctx, []byte(`{"2024-01-10":{"Bob":true}}`)))
	assert.Equal(t, `{"2024-01-10":{"Bob":true}}`, string(b.Bytes()))

	// returned slices are copies
	data, err = b.Load(ctx)
	require.NoError(t, err)
	data[0] = 'X'
	assert.Equal(t, byte('{'), b.Bytes()[0])
}

func TestMemoryBackend_InjectedFailures(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackendWithData([]byte("{}"))

	loadErr := errors.New("load failed")
	b.FailLoad(loadErr)
	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, loadErr)
	b.FailLoad(nil)

	saveErr := errors.New("save failed")
	b.FailSave(saveErr)
	assert.ErrorIs(t, b.Save(ctx, []byte("{}")), saveErr)
}
