package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_PutGetDelete(t *testing.T) {
	store := NewMemoryStorage("http://localhost:8080/files/")
	ctx := context.Background()

	url, err := store.Put(ctx, "avatars/u1.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/avatars/u1.png", url)

	data, contentType, ok := store.Get("avatars/u1.png")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, "avatars/u1.png"))
	_, _, ok = store.Get("avatars/u1.png")
	assert.False(t, ok)
}

func TestMemoryStorage_EmptyKey(t *testing.T) {
	store := NewMemoryStorage("")
	ctx := context.Background()

	_, err := store.Put(ctx, "", "image/png", nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, store.Delete(ctx, ""), ErrEmptyKey)
}
