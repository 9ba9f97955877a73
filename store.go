package vecfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/vecfile/array"
	"github.com/hupe1980/vecfile/codec"
	"github.com/hupe1980/vecfile/index"
	"github.com/hupe1980/vecfile/internal/mmap"
)

// Store is an append-only vector store over a single compressed file.
//
// The dimension, vector element type and key type are fixed by the first
// successful Append and are immutable for the lifetime of the Store. The
// on-disk artifact holds vector bytes only; keys live in an in-memory
// buffer until materialization pairs them with the loaded rows.
//
// A Store is not safe for concurrent use.
type Store struct {
	path string
	opts options

	dim     int        // 0 until the first append fixes it
	elem    array.Type // Invalid until the first append fixes it
	keyType array.Type

	keyBuf bytes.Buffer
	count  uint64
	keys   *array.Array // row-to-key table, rebuilt on every materialize

	file *os.File
	cw   io.WriteCloser
}

// New creates a Store for the artifact at path. No file is touched until a
// write session opens or a load runs.
func New(path string, optFns ...Option) *Store {
	opts := options{
		codec:            codec.Default,
		compressionLevel: 1,
		logger:           NewLogger(nil),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		path: path,
		opts: opts,
	}
}

// Path returns the artifact path.
func (s *Store) Path() string { return s.path }

// Size returns the number of vectors appended during this process lifetime.
func (s *Store) Size() uint64 { return s.count }

// Dimension returns the fixed vector width, or 0 if no schema is set.
func (s *Store) Dimension() int { return s.dim }

// ElementType returns the fixed vector element type.
func (s *Store) ElementType() array.Type { return s.elem }

// KeyType returns the fixed key element type.
func (s *Store) KeyType() array.Type { return s.keyType }

// Keys returns the external-key lookup table produced by the last
// Materialize, or nil. Row i of the materialized array belongs to element i
// of this table.
func (s *Store) Keys() *array.Array { return s.keys }

// KeyBytes returns a copy of the accumulated raw key bytes. Persisting them
// (and restoring via RestoreKeys) is the caller's responsibility; the
// artifact itself never contains key data.
func (s *Store) KeyBytes() []byte {
	return bytes.Clone(s.keyBuf.Bytes())
}

// Open starts a write session that appends to the existing artifact,
// creating it if absent.
func (s *Store) Open() error {
	return s.openSession(os.O_CREATE | os.O_WRONLY | os.O_APPEND)
}

// Create starts a write session on a truncated artifact, discarding any
// previously written vector bytes.
func (s *Store) Create() error {
	return s.openSession(os.O_CREATE | os.O_WRONLY | os.O_TRUNC)
}

func (s *Store) openSession(flag int) error {
	if s.cw != nil {
		return ErrSessionOpen
	}

	f, err := os.OpenFile(s.path, flag, 0o600)
	if err != nil {
		return fmt.Errorf("vecfile: open artifact: %w", err)
	}

	cw, err := s.opts.codec.NewWriter(f, s.opts.compressionLevel)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("vecfile: open %s writer: %w", s.opts.codec.Name(), err)
	}

	s.file = f
	s.cw = cw
	return nil
}

// Close flushes and ends the write session. A session that is never closed
// leaves a truncated compressed stream behind, which the next load reports
// as corruption. Close on a store without an open session is a no-op.
func (s *Store) Close() error {
	if s.cw == nil {
		return nil
	}

	err := s.cw.Close()
	if cerr := s.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.cw = nil
	s.file = nil

	if err != nil {
		return fmt.Errorf("vecfile: close write session: %w", err)
	}
	return nil
}

// Append validates and appends a batch of (key, vector) pairs.
//
// keys must be rank 1 and vectors rank 2 with shape (len(keys), D). The
// first successful append fixes D, the vector element type and the key
// element type; later batches must match. Validation completes before any
// byte is written, so a rejected batch leaves the store unchanged.
func (s *Store) Append(keys, vectors *array.Array) error {
	if s.cw == nil {
		return ErrSessionClosed
	}

	if vectors.Rank() != 2 {
		return fmt.Errorf("%w: vectors shape %v, expecting rank 2", ErrInvalidRank, vectors.Shape())
	}
	if keys.Rank() != 1 {
		return fmt.Errorf("%w: keys shape %v, expecting rank 1", ErrInvalidRank, keys.Shape())
	}

	rows, dim := vectors.Shape()[0], vectors.Shape()[1]

	if s.dim == 0 {
		if dim == 0 {
			return fmt.Errorf("%w: vectors have zero width", ErrDimensionMismatch)
		}
	} else {
		if dim != s.dim {
			return fmt.Errorf("%w: vectors shape [%d, %d] does not match store dimension %d", ErrDimensionMismatch, rows, dim, s.dim)
		}
		if vectors.Type() != s.elem {
			return fmt.Errorf("%w: vectors are %s, store holds %s", ErrTypeMismatch, vectors.Type(), s.elem)
		}
	}

	if keys.Len() != rows {
		return fmt.Errorf("%w: %d keys for %d vectors", ErrCountMismatch, keys.Len(), rows)
	}
	if s.keyType != array.Invalid && keys.Type() != s.keyType {
		return fmt.Errorf("%w: keys are %s, store holds %s", ErrKeyTypeMismatch, keys.Type(), s.keyType)
	}

	if _, err := s.cw.Write(vectors.Bytes()); err != nil {
		return fmt.Errorf("vecfile: write vectors: %w", err)
	}
	s.keyBuf.Write(keys.Bytes())

	if s.dim == 0 {
		s.dim = dim
		s.elem = vectors.Type()
	}
	s.keyType = keys.Type()
	s.count += uint64(rows)
	if s.opts.sizeCounter != nil {
		s.opts.sizeCounter.Add(uint64(rows))
	}

	s.opts.logger.LogAppend(rows, dim, nil)
	return nil
}

// RestoreSchema supplies the artifact schema without appending, e.g. after
// a process restart or a remote fetch. It fails if a different schema is
// already fixed.
func (s *Store) RestoreSchema(dim int, elem, keyType array.Type) error {
	if dim <= 0 || elem.Size() == 0 {
		return fmt.Errorf("%w: dimension %d, element type %s", ErrDimensionMismatch, dim, elem)
	}
	if s.dim != 0 && s.dim != dim {
		return fmt.Errorf("%w: schema already fixed at %d", ErrDimensionMismatch, s.dim)
	}
	if s.elem != array.Invalid && s.elem != elem {
		return fmt.Errorf("%w: schema already fixed at %s", ErrTypeMismatch, s.elem)
	}
	if s.keyType != array.Invalid && keyType != array.Invalid && s.keyType != keyType {
		return fmt.Errorf("%w: schema already fixed at %s", ErrKeyTypeMismatch, s.keyType)
	}

	s.dim = dim
	s.elem = elem
	if keyType != array.Invalid {
		s.keyType = keyType
	}
	return nil
}

// RestoreKeys replaces the key buffer with externally persisted raw key
// bytes, e.g. a key sidecar written by a previous process.
func (s *Store) RestoreKeys(raw []byte, keyType array.Type) error {
	if keyType.Size() == 0 {
		return fmt.Errorf("%w: invalid key type", ErrKeyTypeMismatch)
	}
	if len(raw)%keyType.Size() != 0 {
		return fmt.Errorf("%w: %d key bytes is not a multiple of %s size", ErrCountMismatch, len(raw), keyType)
	}
	if s.keyType != array.Invalid && s.keyType != keyType {
		return fmt.Errorf("%w: keys are %s, store holds %s", ErrKeyTypeMismatch, keyType, s.keyType)
	}

	s.keyBuf.Reset()
	s.keyBuf.Write(raw)
	s.keyType = keyType
	s.keys = nil
	return nil
}

// LoadVectors decompresses the full artifact into a (-1, dim) array.
//
// A missing file, unset schema, truncated stream or non-rectangular byte
// length all return nil; severity and cause go to the logger. The returned
// array is pre-reconciliation: Materialize is the operation callers
// normally want.
func (s *Store) LoadVectors() *array.Array {
	log := s.opts.logger.WithPath(s.path)
	log.Info("loading vectors")

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		log.Warn("vector data not found")
		return nil
	}

	if s.dim == 0 || s.elem == array.Invalid {
		log.Warn("no schema available, skipping load")
		return nil
	}

	raw, err := s.readArtifact()
	if err != nil {
		log.Error("artifact is broken or incomplete, was the write session closed?", "error", err)
		return nil
	}

	vecs, err := array.FromBytes(raw, s.elem, -1, s.dim)
	if err != nil {
		log.Error("artifact length does not match schema, was the write session closed?",
			"bytes", len(raw),
			"dimension", s.dim,
			"element_type", s.elem,
			"error", err,
		)
		return nil
	}

	return vecs
}

func (s *Store) readArtifact() ([]byte, error) {
	// A raw artifact is plain vector bytes, so it can be mapped instead
	// of streamed through a decompressor.
	if _, ok := s.opts.codec.(codec.Raw); ok {
		m, err := mmap.Open(s.path)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		return bytes.Clone(m.Bytes()), nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := s.opts.codec.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// Materialize loads the artifact and reconciles it with the key buffer.
//
// The key table is re-derived from the key buffer on every call, replacing
// any previous table. Nil is returned when nothing usable exists: no data,
// no key table, or a key count that disagrees with the loaded row count
// (the signature of two overlapping write sessions). An empty-but-valid
// store returns its empty array with a warning.
func (s *Store) Materialize() *array.Array {
	vecs := s.LoadVectors()
	if vecs == nil {
		return nil
	}

	log := s.opts.logger.WithPath(s.path)

	if s.keyBuf.Len() > 0 && s.keyType != array.Invalid {
		keys, err := array.FromBytes(s.KeyBytes(), s.keyType, -1)
		if err != nil {
			log.Error("key buffer does not match key type", "error", err)
			return nil
		}
		s.keys = keys
	}

	if s.keys == nil || vecs.Rank() != 2 {
		return nil
	}

	if s.keys.Len() != vecs.Len() {
		log.Error("key table and vectors are inconsistent, was the store written twice?",
			"keys", s.keys.Len(),
			"vectors", vecs.Len(),
		)
		return nil
	}

	if vecs.Len() == 0 {
		log.Warn("an empty store was loaded")
	}

	return vecs
}

// BuildIndex materializes the store and hands the reconciled array to the
// builder. A store with nothing usable yields (nil, nil) without invoking
// the builder.
func (s *Store) BuildIndex(ctx context.Context, b index.Builder) (index.Index, error) {
	vecs := s.Materialize()
	if vecs == nil {
		return nil, nil
	}
	return b.BuildAdvancedIndex(ctx, vecs)
}
