package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("compressed vector artifact bytes")

	w, err := store.Create(ctx, "vectors.gz")
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "vectors.gz")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	got, err := ReadAll(ctx, store, "vectors.gz")
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "keys.bin", []byte{1, 2, 3}))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	sort.Strings(names)
	require.Equal(t, []string{"keys.bin", "vectors.gz"}, names)

	names, err = store.List(ctx, "vec")
	require.NoError(t, err)
	require.Equal(t, []string{"vectors.gz"}, names)

	require.NoError(t, store.Delete(ctx, "keys.bin"))
	require.NoError(t, store.Delete(ctx, "keys.bin"))

	_, err = store.Open(ctx, "keys.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_CreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	w, err := store.Create(ctx, "vectors.gz")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// Not yet closed: the final name must not exist.
	_, statErr := os.Stat(filepath.Join(dir, "vectors.gz"))
	require.True(t, os.IsNotExist(statErr))

	require.NoError(t, w.Close())
	_, statErr = os.Stat(filepath.Join(dir, "vectors.gz"))
	require.NoError(t, statErr)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "a/manifest.json", []byte(`{}`)))

	w, err := store.Create(ctx, "a/vectors.gz")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := ReadAll(ctx, store, "a/vectors.gz")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	sort.Strings(names)
	require.Equal(t, []string{"a/manifest.json", "a/vectors.gz"}, names)

	require.NoError(t, store.Delete(ctx, "a/manifest.json"))
	_, err = store.Open(ctx, "a/manifest.json")
	require.ErrorIs(t, err, ErrNotFound)
}
