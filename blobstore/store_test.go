package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the Store contract against an implementation.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "does-not-exist")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutOpenRoundTrip", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a/blob1", []byte("hello")))

		rc, err := store.Open(ctx, "a/blob1")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a/blob1", []byte("v2")))

		rc, err := store.Open(ctx, "a/blob1")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a/blob2", []byte("x")))
		require.NoError(t, store.Put(ctx, "b/blob3", []byte("y")))

		names, err := store.List(ctx, "a/")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/blob1", "a/blob2"}, names)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/blob1", "a/blob2", "b/blob3"}, all)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "a/blob1"))
		_, err := store.Open(ctx, "a/blob1")
		require.ErrorIs(t, err, ErrNotFound)

		// Deleting again is not an error.
		require.NoError(t, store.Delete(ctx, "a/blob1"))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestMemoryStore_OpenIsolatesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "blob", []byte("abc")))

	rc, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	// Mutating what the reader handed out must not change the stored blob.
	data[0] = 'z'

	rc, err = store.Open(ctx, "blob")
	require.NoError(t, err)
	defer rc.Close()
	again, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestLocalStore_NoTempFileLeaks(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "blob", []byte("data")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"blob"}, names)
}
