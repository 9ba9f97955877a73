package vecfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/vecfile/array"
	"github.com/hupe1980/vecfile/blobstore"
	"github.com/hupe1980/vecfile/codec"
	"github.com/stretchr/testify/require"
)

func TestSyncFetch_RoundTrip(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	src := testStore(t)
	keys := int64Keys(t, 1, 2, 3)
	vecs := float32Vecs(t, [][]float32{{1, 2}, {3, 4}, {5, 6}})

	require.NoError(t, src.Open())
	require.NoError(t, src.Append(keys, vecs))
	require.NoError(t, src.Close())

	require.NoError(t, src.SyncTo(ctx, bs, "stores/a"))

	// The prefix now holds the artifact, the key sidecar and the manifest.
	names, err := bs.List(ctx, "stores/a")
	require.NoError(t, err)
	require.Len(t, names, 3)

	dst := New(filepath.Join(t.TempDir(), "vectors.gz"), WithLogger(NoopLogger()))
	require.NoError(t, dst.FetchFrom(ctx, bs, "stores/a"))

	got := dst.Materialize()
	require.NotNil(t, got)
	require.True(t, vecs.Equal(got))
	require.True(t, keys.Equal(dst.Keys()))
	require.Equal(t, uint64(3), dst.Size())
}

func TestSyncTo_RateLimited(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	src := testStore(t)
	require.NoError(t, src.Open())
	require.NoError(t, src.Append(int64Keys(t, 1), float32Vecs(t, [][]float32{{1, 2}})))
	require.NoError(t, src.Close())

	// A generous limit so the test stays fast; the point is the limited
	// upload path, not the throughput.
	require.NoError(t, src.SyncTo(ctx, bs, "stores/b", WithRateLimit(1<<30)))

	_, err := bs.Open(ctx, "stores/b/"+ManifestBlobName)
	require.NoError(t, err)
}

func TestSyncTo_Rejections(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	s := testStore(t)

	// No schema fixed yet.
	require.Error(t, s.SyncTo(ctx, bs, "stores/c"))

	require.NoError(t, s.Open())
	require.NoError(t, s.Append(int64Keys(t, 1), float32Vecs(t, [][]float32{{1, 2}})))

	// Session still open.
	require.ErrorIs(t, s.SyncTo(ctx, bs, "stores/c"), ErrSessionOpen)
	require.NoError(t, s.Close())

	require.NoError(t, s.SyncTo(ctx, bs, "stores/c"))
}

func TestFetchFrom_CodecMismatch(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	src := testStore(t, WithCodec(codec.Zstd{}))
	require.NoError(t, src.Open())
	require.NoError(t, src.Append(int64Keys(t, 1), float32Vecs(t, [][]float32{{1, 2}})))
	require.NoError(t, src.Close())
	require.NoError(t, src.SyncTo(ctx, bs, "stores/d"))

	// The destination is configured with the default codec and must not
	// silently misread a zstd artifact.
	dst := New(filepath.Join(t.TempDir(), "vectors.gz"), WithLogger(NoopLogger()))
	err := dst.FetchFrom(ctx, bs, "stores/d")
	require.Error(t, err)
	require.Contains(t, err.Error(), "codec")
}

func TestFetchFrom_MissingManifest(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	dst := New(filepath.Join(t.TempDir(), "vectors.gz"), WithLogger(NoopLogger()))
	require.ErrorIs(t, dst.FetchFrom(ctx, bs, "stores/missing"), blobstore.ErrNotFound)
}

func TestFetchFrom_KeySidecarMismatch(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	src := testStore(t)
	require.NoError(t, src.Open())
	require.NoError(t, src.Append(int64Keys(t, 1, 2), float32Vecs(t, [][]float32{{1, 2}, {3, 4}})))
	require.NoError(t, src.Close())
	require.NoError(t, src.SyncTo(ctx, bs, "stores/e"))

	// Corrupt the sidecar so it no longer matches the manifest row count.
	require.NoError(t, bs.Put(ctx, "stores/e/"+KeysBlobName, array.Vector([]int64{1}).Bytes()))

	dst := New(filepath.Join(t.TempDir(), "vectors.gz"), WithLogger(NoopLogger()))
	err := dst.FetchFrom(ctx, bs, "stores/e")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sidecar")
}
