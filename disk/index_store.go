package disk

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/erasure"
)

// IndexStore persists the encoded index blob.
type IndexStore interface {
	// Load returns the last saved blob, or nil when none was ever saved.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

type fileIndexStore struct {
	path string
}

// NewFileIndexStore keeps the index in a single file, replaced atomically through a rename.
func NewFileIndexStore(path string) IndexStore {
	return &fileIndexStore{path: path}
}

func (s *fileIndexStore) Load(ctx context.Context) ([]byte, error) {
	return readOptionalFile(ctx, s.path)
}

func (s *fileIndexStore) Save(ctx context.Context, data []byte) error {
	return writeFileAtomic(ctx, s.path, data)
}

func readOptionalFile(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := nodestore.RetryIO(ctx, func() error {
		var err error
		data, err = os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			data = nil
			return nil
		}
		return err
	})
	return data, err
}

func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	tmp := path + ".tmp"
	return nodestore.RetryIO(ctx, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	})
}

// erasureIndexStore saves the index to a primary file plus one Reed-Solomon shard per folder.
// A missing or damaged primary is rebuilt from the shards on Load.
type erasureIndexStore struct {
	primary IndexStore
	name    string
	folders []string
	erasure *erasure.Erasure
	verify  func([]byte) error
}

// NewErasureIndexStore wraps primary with shard copies. verify decides whether a loaded blob is intact.
func NewErasureIndexStore(primary IndexStore, name string, opts ErasureOptions, verify func([]byte) error) (IndexStore, error) {
	if len(opts.Folders) != opts.DataShards+opts.ParityShards {
		return nil, configError("index erasure coding needs %d folders, got %d", opts.DataShards+opts.ParityShards, len(opts.Folders))
	}
	e, err := erasure.NewErasure(opts.DataShards, opts.ParityShards)
	if err != nil {
		return nil, nodestore.Error{Code: nodestore.ConfigurationError, Err: err}
	}
	return &erasureIndexStore{
		primary: primary,
		name:    filepath.Base(name),
		folders: opts.Folders,
		erasure: e,
		verify:  verify,
	}, nil
}

func (s *erasureIndexStore) shardPath(i int) string {
	return filepath.Join(s.folders[i], fmt.Sprintf("%s.shard%d", s.name, i))
}

func (s *erasureIndexStore) Save(ctx context.Context, data []byte) error {
	if err := s.primary.Save(ctx, data); err != nil {
		return err
	}
	shards, err := s.erasure.Encode(data)
	if err != nil {
		return err
	}
	eg, ectx := errgroup.WithContext(ctx)
	for i := range shards {
		eg.Go(func() error {
			return s.writeShard(ectx, i, len(data), shards)
		})
	}
	return eg.Wait()
}

func (s *erasureIndexStore) writeShard(ctx context.Context, i, dataSize int, shards [][]byte) error {
	meta := s.erasure.ComputeShardMetadata(dataSize, shards, i)
	buf := make([]byte, 0, len(meta)+len(shards[i]))
	buf = append(buf, meta...)
	buf = append(buf, shards[i]...)
	return writeFileAtomic(ctx, s.shardPath(i), buf)
}

func (s *erasureIndexStore) Load(ctx context.Context) ([]byte, error) {
	data, perr := s.primary.Load(ctx)
	if perr == nil && data != nil && s.verify(data) == nil {
		return data, nil
	}

	shards := make([][]byte, len(s.folders))
	metas := make([][]byte, len(s.folders))
	eg, ectx := errgroup.WithContext(ctx)
	for i := range s.folders {
		eg.Go(func() error {
			b, err := readOptionalFile(ectx, s.shardPath(i))
			if err != nil {
				log.Warn("index shard unreadable", "path", s.shardPath(i), "error", err)
				return nil
			}
			if len(b) > erasure.MetaDataSize {
				metas[i] = b[:erasure.MetaDataSize]
				shards[i] = b[erasure.MetaDataSize:]
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	found := 0
	for _, sh := range shards {
		if sh != nil {
			found++
		}
	}
	if found == 0 {
		// Nothing to rebuild from; hand back whatever the primary gave.
		return data, perr
	}

	r := s.erasure.Decode(shards, metas)
	if r.Error != nil {
		log.Warn("index shards could not rebuild the index", "error", r.Error)
		if perr != nil {
			return nil, perr
		}
		return data, nil
	}
	if err := s.verify(r.DecodedData); err != nil {
		log.Warn("index rebuilt from shards does not verify", "error", err)
		if perr != nil {
			return nil, perr
		}
		return data, nil
	}

	log.Warn("index reconstructed from erasure shards", "shards", len(shards), "rebuilt", r.ReconstructedShardsIndices)
	if err := s.primary.Save(ctx, r.DecodedData); err != nil {
		log.Error("rewriting primary index failed", "error", err)
	}
	for _, i := range r.ReconstructedShardsIndices {
		if err := s.writeShard(ctx, i, len(r.DecodedData), shards); err != nil {
			log.Error("rewriting index shard failed", "shard", i, "error", err)
		}
	}
	return r.DecodedData, nil
}
