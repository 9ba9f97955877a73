// Package flat provides an exact (brute-force) search index over a
// materialized vector array.
package flat

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/hupe1980/vecfile/array"
	"github.com/hupe1980/vecfile/distance"
	"github.com/hupe1980/vecfile/index"
	"golang.org/x/sync/errgroup"
)

// Compile-time checks.
var (
	_ index.Builder = (*Builder)(nil)
	_ index.Index   = (*Flat)(nil)
)

// Options contains configuration options for the flat index.
type Options struct {
	// Metric is the distance metric used for scoring.
	Metric distance.Metric

	// NormalizeVectors enables L2 normalization for stored vectors and
	// queries. Commonly used for cosine search.
	NormalizeVectors bool

	// NumWorkers caps the parallelism of a single search. Values < 1
	// default to GOMAXPROCS.
	NumWorkers int
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Metric: distance.MetricL2,
}

// Builder builds flat indexes from float32 vector arrays.
type Builder struct {
	opts Options
}

// NewBuilder creates a flat index builder.
func NewBuilder(optFns ...func(o *Options)) *Builder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{opts: opts}
}

// BuildAdvancedIndex builds an exact-search index over the array. The array
// must be rank 2 with float32 elements; rows with zero norm are kept as-is
// when normalization is enabled.
func (b *Builder) BuildAdvancedIndex(_ context.Context, vecs *array.Array) (index.Index, error) {
	if vecs.Rank() != 2 {
		return nil, fmt.Errorf("%w: rank %d", index.ErrWrongDimension, vecs.Rank())
	}
	if vecs.Type() != array.Float32 {
		return nil, fmt.Errorf("%w: %s", index.ErrUnsupportedElementType, vecs.Type())
	}

	data, err := array.Values[float32](vecs)
	if err != nil {
		return nil, err
	}

	dim := vecs.Shape()[1]
	rows := vecs.Shape()[0]

	if b.opts.NormalizeVectors {
		data = slices.Clone(data)
		for i := 0; i < rows; i++ {
			distance.NormalizeL2InPlace(data[i*dim : (i+1)*dim])
		}
	}

	distFunc, err := distance.Provider(b.opts.Metric)
	if err != nil {
		return nil, err
	}

	workers := b.opts.NumWorkers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Flat{
		data:      data,
		dim:       dim,
		rows:      rows,
		metric:    b.opts.Metric,
		distFunc:  distFunc,
		normalize: b.opts.NormalizeVectors,
		workers:   workers,
	}, nil
}

// Flat is an exact-search index. It is safe for concurrent searches; the
// underlying data is immutable after build.
type Flat struct {
	data      []float32
	dim       int
	rows      int
	metric    distance.Metric
	distFunc  distance.Func
	normalize bool
	workers   int
}

// Size returns the number of indexed vectors.
func (f *Flat) Size() int { return f.rows }

// Search scans all rows (or the filtered subset) and returns the top k
// candidates, best first. Large row counts are scanned in parallel chunks.
func (f *Flat) Search(ctx context.Context, query []float32, k int, optFns ...func(*index.SearchOptions)) ([]index.Candidate, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", index.ErrWrongDimension, len(query), f.dim)
	}
	if k <= 0 || f.rows == 0 {
		return nil, nil
	}

	var opts index.SearchOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if f.normalize {
		if normalized, ok := distance.NormalizeL2Copy(query); ok {
			query = normalized
		}
	}

	workers := f.workers
	if chunks := (f.rows + minChunkRows - 1) / minChunkRows; chunks < workers {
		workers = chunks
	}

	results := make([][]index.Candidate, workers)
	g, ctx := errgroup.WithContext(ctx)

	chunkSize := (f.rows + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunkSize
		end := min(start+chunkSize, f.rows)

		g.Go(func() error {
			top := newTopK(k, f.metric)
			for row := start; row < end; row++ {
				if row%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				if opts.Filter != nil && !opts.Filter.Contains(uint32(row)) {
					continue
				}
				score := f.distFunc(query, f.data[row*f.dim:(row+1)*f.dim])
				top.offer(index.Candidate{Row: uint32(row), Score: score})
			}
			results[w] = top.items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []index.Candidate
	for _, r := range results {
		merged = append(merged, r...)
	}
	slices.SortFunc(merged, func(a, b index.Candidate) int {
		if f.metric.Smaller(a.Score, b.Score) {
			return -1
		}
		if f.metric.Smaller(b.Score, a.Score) {
			return 1
		}
		return 0
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

const minChunkRows = 2048

// topK keeps the k best candidates seen so far. The heap root is the worst
// kept candidate, so a new candidate only displaces it when strictly better.
type topK struct {
	items  []index.Candidate
	k      int
	metric distance.Metric
}

func newTopK(k int, m distance.Metric) *topK {
	return &topK{items: make([]index.Candidate, 0, k), k: k, metric: m}
}

func (h *topK) offer(c index.Candidate) {
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		if len(h.items) == h.k {
			heap.Init(h)
		}
		return
	}
	if h.metric.Smaller(c.Score, h.items[0].Score) {
		h.items[0] = c
		heap.Fix(h, 0)
	}
}

func (h *topK) Len() int { return len(h.items) }

func (h *topK) Less(i, j int) bool {
	// Worst candidate at the root.
	return h.metric.Smaller(h.items[j].Score, h.items[i].Score)
}

func (h *topK) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *topK) Push(x any) { h.items = append(h.items, x.(index.Candidate)) }

func (h *topK) Pop() any {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}
