package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileBlobstore_SetGetDelete(t *testing.T) {
	blobs, err := NewFileBlobstore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = blobs.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, blobs.Set(ctx, "key", []byte(`{"a":1}`)))
	data, err := blobs.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)

	require.NoError(t, blobs.Set(ctx, "key", []byte(`{"a":2}`)))
	data, err = blobs.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), data)

	require.NoError(t, blobs.Delete(ctx, "key"))
	_, err = blobs.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting an absent key is a no-op.
	require.NoError(t, blobs.Delete(ctx, "key"))
}

func TestFileBlobstore_KeyWithSeparator(t *testing.T) {
	blobs, err := NewFileBlobstore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, blobs.Set(ctx, "a/b", []byte("x")))
	data, err := blobs.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
