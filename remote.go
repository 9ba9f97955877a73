package vecfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/hupe1980/vecfile/array"
	"github.com/hupe1980/vecfile/blobstore"
	"github.com/hupe1980/vecfile/internal/conv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Blob names published under the sync prefix.
const (
	VectorsBlobName  = "vectors.bin"
	KeysBlobName     = "keys.bin"
	ManifestBlobName = "manifest.json"
)

// Manifest describes a synced store: the schema the artifact cannot carry
// itself, plus the blob layout. It is the unit an atomic commit store
// (blobstore/s3.DDBCommitStore) publishes last.
type Manifest struct {
	Rows        uint64    `json:"rows"`
	Dimension   int       `json:"dimension"`
	ElementType string    `json:"element_type"`
	KeyType     string    `json:"key_type,omitempty"`
	Codec       string    `json:"codec"`
	VectorsBlob string    `json:"vectors_blob"`
	KeysBlob    string    `json:"keys_blob,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SyncOptions configures SyncTo.
type SyncOptions struct {
	// RateLimitBytesPerSec throttles upload throughput across both blob
	// uploads. 0 means unlimited.
	RateLimitBytesPerSec int64
}

// WithRateLimit throttles sync uploads to the given bytes per second.
func WithRateLimit(bytesPerSec int64) func(*SyncOptions) {
	return func(o *SyncOptions) {
		o.RateLimitBytesPerSec = bytesPerSec
	}
}

// SyncTo uploads the artifact, the key sidecar and the manifest to the blob
// store under prefix. The write session must be closed and a schema fixed.
// Vector and key blobs upload concurrently; the manifest is published last
// so a reader never observes a manifest pointing at missing blobs.
func (s *Store) SyncTo(ctx context.Context, bs blobstore.BlobStore, prefix string, optFns ...func(*SyncOptions)) error {
	if s.cw != nil {
		return ErrSessionOpen
	}
	if s.dim == 0 || s.elem == array.Invalid {
		return fmt.Errorf("vecfile: nothing to sync, no schema fixed")
	}

	var opts SyncOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	var limiter *rate.Limiter
	if opts.RateLimitBytesPerSec > 0 {
		burst := int(opts.RateLimitBytesPerSec)
		if burst < uploadChunkSize {
			burst = uploadChunkSize
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitBytesPerSec), burst)
	}

	artifact, err := os.ReadFile(s.path)
	if err != nil {
		err = fmt.Errorf("vecfile: read artifact: %w", err)
		s.opts.logger.LogSync(prefix, s.count, err)
		return err
	}
	keyBytes := s.KeyBytes()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return uploadBlob(ctx, bs, path.Join(prefix, VectorsBlobName), artifact, limiter)
	})
	g.Go(func() error {
		return uploadBlob(ctx, bs, path.Join(prefix, KeysBlobName), keyBytes, limiter)
	})
	if err := g.Wait(); err != nil {
		s.opts.logger.LogSync(prefix, s.count, err)
		return err
	}

	m := Manifest{
		Rows:        s.count,
		Dimension:   s.dim,
		ElementType: s.elem.String(),
		Codec:       s.opts.codec.Name(),
		VectorsBlob: VectorsBlobName,
		KeysBlob:    KeysBlobName,
		CreatedAt:   time.Now().UTC(),
	}
	if s.keyType != array.Invalid {
		m.KeyType = s.keyType.String()
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("vecfile: marshal manifest: %w", err)
	}
	if err := bs.Put(ctx, path.Join(prefix, ManifestBlobName), data); err != nil {
		err = fmt.Errorf("vecfile: publish manifest: %w", err)
		s.opts.logger.LogSync(prefix, s.count, err)
		return err
	}

	s.opts.logger.LogSync(prefix, s.count, nil)
	return nil
}

// FetchFrom downloads a synced store: the artifact is written to the
// store's path and the schema and key buffer are restored from the
// manifest and key sidecar. The local store must be fresh (no schema, no
// open session).
func (s *Store) FetchFrom(ctx context.Context, bs blobstore.BlobStore, prefix string) error {
	if s.cw != nil {
		return ErrSessionOpen
	}

	data, err := blobstore.ReadAll(ctx, bs, path.Join(prefix, ManifestBlobName))
	if err != nil {
		return fmt.Errorf("vecfile: read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("vecfile: decode manifest: %w", err)
	}

	if m.Codec != s.opts.codec.Name() {
		return fmt.Errorf("vecfile: manifest codec %q does not match configured codec %q", m.Codec, s.opts.codec.Name())
	}

	elem := array.ParseType(m.ElementType)
	if elem == array.Invalid {
		return fmt.Errorf("vecfile: manifest has unknown element type %q", m.ElementType)
	}
	keyType := array.ParseType(m.KeyType)

	rows, err := conv.Uint64ToInt(m.Rows)
	if err != nil {
		return fmt.Errorf("vecfile: manifest rows: %w", err)
	}

	if err := s.RestoreSchema(m.Dimension, elem, keyType); err != nil {
		return err
	}

	artifact, err := blobstore.ReadAll(ctx, bs, path.Join(prefix, m.VectorsBlob))
	if err != nil {
		return fmt.Errorf("vecfile: fetch vectors: %w", err)
	}
	if err := os.WriteFile(s.path, artifact, 0o600); err != nil {
		return fmt.Errorf("vecfile: write artifact: %w", err)
	}

	if m.KeysBlob != "" && keyType != array.Invalid {
		keyBytes, err := blobstore.ReadAll(ctx, bs, path.Join(prefix, m.KeysBlob))
		if err != nil {
			return fmt.Errorf("vecfile: fetch keys: %w", err)
		}
		if len(keyBytes)/keyType.Size() != rows {
			return fmt.Errorf("vecfile: key sidecar holds %d keys, manifest says %d rows", len(keyBytes)/keyType.Size(), rows)
		}
		if err := s.RestoreKeys(keyBytes, keyType); err != nil {
			return err
		}
	}

	s.count = m.Rows
	s.opts.logger.WithPath(s.path).Info("fetched store",
		"prefix", prefix,
		"rows", m.Rows,
	)
	return nil
}

const uploadChunkSize = 64 * 1024

// uploadBlob streams data to a blob, honoring an optional rate limiter.
func uploadBlob(ctx context.Context, bs blobstore.BlobStore, name string, data []byte, limiter *rate.Limiter) error {
	w, err := bs.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create blob %s: %w", name, err)
	}

	src := bytes.NewReader(data)
	buf := make([]byte, uploadChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if limiter != nil {
				if err := limiter.WaitN(ctx, n); err != nil {
					_ = w.Close()
					return err
				}
			}
			if _, err := w.Write(buf[:n]); err != nil {
				_ = w.Close()
				return fmt.Errorf("upload blob %s: %w", name, err)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize blob %s: %w", name, err)
	}
	return nil
}
