package flat

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vecfile/array"
	"github.com/hupe1980/vecfile/distance"
	"github.com/hupe1980/vecfile/index"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, rows [][]float32, optFns ...func(*Options)) index.Index {
	t.Helper()
	vecs, err := array.Matrix(rows)
	require.NoError(t, err)

	idx, err := NewBuilder(optFns...).BuildAdvancedIndex(context.Background(), vecs)
	require.NoError(t, err)
	return idx
}

func TestSearch_L2(t *testing.T) {
	idx := buildIndex(t, [][]float32{
		{0, 0},
		{1, 1},
		{10, 10},
		{2, 2},
	})
	require.Equal(t, 4, idx.Size())

	hits, err := idx.Search(context.Background(), []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, uint32(1), hits[0].Row)
	require.Equal(t, float32(0), hits[0].Score)
	require.Equal(t, uint32(0), hits[1].Row)
}

func TestSearch_Cosine(t *testing.T) {
	idx := buildIndex(t, [][]float32{
		{1, 0},
		{0, 1},
		{5, 5},
	}, func(o *Options) {
		o.Metric = distance.MetricCosine
		o.NormalizeVectors = true
	})

	hits, err := idx.Search(context.Background(), []float32{2, 2}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	// {5,5} points in the same direction as the query.
	require.Equal(t, uint32(2), hits[0].Row)
	require.InDelta(t, 1.0, hits[0].Score, 1e-5)
}

func TestSearch_Filter(t *testing.T) {
	idx := buildIndex(t, [][]float32{
		{0, 0},
		{1, 1},
		{2, 2},
	})

	filter := roaring.BitmapOf(0, 2)
	hits, err := idx.Search(context.Background(), []float32{1, 1}, 3, index.WithFilter(filter))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		require.Contains(t, []uint32{0, 2}, h.Row)
	}
}

func TestSearch_WrongDimension(t *testing.T) {
	idx := buildIndex(t, [][]float32{{1, 2}})
	_, err := idx.Search(context.Background(), []float32{1, 2, 3}, 1)
	require.ErrorIs(t, err, index.ErrWrongDimension)
}

func TestSearch_KLargerThanRows(t *testing.T) {
	idx := buildIndex(t, [][]float32{{0, 0}, {1, 1}})
	hits, err := idx.Search(context.Background(), []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestSearch_EmptyAndZeroK(t *testing.T) {
	vecs, err := array.FromBytes(nil, array.Float32, -1, 2)
	require.NoError(t, err)
	idx, err := NewBuilder().BuildAdvancedIndex(context.Background(), vecs)
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, hits)

	full := buildIndex(t, [][]float32{{1, 1}})
	hits, err = full.Search(context.Background(), []float32{0, 0}, 0)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestBuild_Rejections(t *testing.T) {
	b := NewBuilder()

	rank1 := array.Vector([]float32{1, 2, 3})
	_, err := b.BuildAdvancedIndex(context.Background(), rank1)
	require.ErrorIs(t, err, index.ErrWrongDimension)

	f64, err := array.Of([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	_, err = b.BuildAdvancedIndex(context.Background(), f64)
	require.ErrorIs(t, err, index.ErrUnsupportedElementType)
}

func TestSearch_ParallelMatchesSerial(t *testing.T) {
	rows := make([][]float32, 5000)
	for i := range rows {
		rows[i] = []float32{float32(i), float32(i % 17)}
	}

	serial := buildIndex(t, rows, func(o *Options) { o.NumWorkers = 1 })
	parallel := buildIndex(t, rows, func(o *Options) { o.NumWorkers = 4 })

	query := []float32{123, 5}
	a, err := serial.Search(context.Background(), query, 10)
	require.NoError(t, err)
	b, err := parallel.Search(context.Background(), query, 10)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].Score, b[i].Score)
	}
}
