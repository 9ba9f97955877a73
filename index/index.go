// Package index defines the extension point between the vector store and
// concrete search strategies.
//
// The store guarantees that the array handed to a Builder is consistent:
// rank 2, schema-validated and key-aligned. Everything downstream of that
// guarantee (exact scan, clustering, quantization) lives behind the Builder
// and Index interfaces.
package index

import (
	"context"
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vecfile/array"
)

var (
	// ErrWrongDimension is returned when a query does not match the index
	// dimension.
	ErrWrongDimension = errors.New("index: wrong query dimension")

	// ErrUnsupportedElementType is returned when a builder cannot consume
	// the array's element type.
	ErrUnsupportedElementType = errors.New("index: unsupported element type")
)

// Candidate is a single search hit. Row indexes into the materialized
// vector array; callers map it to an external key via the store's key table.
type Candidate struct {
	Row   uint32
	Score float32
}

// Index is a search-ready structure produced by a Builder.
type Index interface {
	// Search returns up to k candidates for the query, best first.
	Search(ctx context.Context, query []float32, k int, optFns ...func(*SearchOptions)) ([]Candidate, error)

	// Size returns the number of indexed vectors.
	Size() int
}

// Builder turns a reconciled vector array into a search-ready index.
// Implementations include exact, clustered and quantized variants.
type Builder interface {
	BuildAdvancedIndex(ctx context.Context, vecs *array.Array) (Index, error)
}

// SearchOptions contains per-query settings.
type SearchOptions struct {
	// Filter restricts the search to the given row IDs. Nil means no
	// restriction.
	Filter *roaring.Bitmap
}

// WithFilter restricts a search to rows contained in the bitmap.
func WithFilter(filter *roaring.Bitmap) func(*SearchOptions) {
	return func(o *SearchOptions) {
		o.Filter = filter
	}
}
