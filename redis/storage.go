// Package redis stores nodes as Redis strings keyed "<prefix>:<id>".
package redis

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/nodestore"
)

const scanBatch = 256

// Storage is the Redis node store. Writes are immediate, so Flush does nothing.
// Feature types and bounds are kept in process only.
type Storage struct {
	nodestore.Metadata
	client   Client
	conn     *Connection
	prefix   string
	ttl      time.Duration
	codec    nodestore.NodeCodec
	disposed atomic.Bool
}

// NewFromProperties connects with the redis properties. The connection is owned and closed by Dispose.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	opts, err := OptionsFromProperties(props)
	if err != nil {
		return nil, err
	}
	conn := OpenConnection(opts)
	if err := conn.Client.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, nodestore.Error{Code: nodestore.ConfigurationError, Err: fmt.Errorf("redis %s: %w", opts.Address, err)}
	}
	s := New(conn.Client, opts)
	s.conn = conn
	return s, nil
}

// New stores nodes through client using the Prefix and TTL of opts. The client is not closed by Dispose.
func New(client Client, opts Options) *Storage {
	return &Storage{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		codec:  nodestore.DefaultNodeCodec,
	}
}

func (s *Storage) key(id nodestore.NodeID) string {
	return s.prefix + ":" + id.String()
}

func (s *Storage) check() error {
	if s.disposed.Load() {
		return nodestore.Disposed()
	}
	return nil
}

// Get returns the node, or nil when the key is absent or expired.
func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	ba, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n, err := s.codec.Decode(ba)
	if err != nil {
		log.Warn("redis node failed to decode, treating as absent", "key", s.key(id), "error", err)
		return nil, nil
	}
	n.ID = id
	return n, nil
}

func (s *Storage) Put(ctx context.Context, n *nodestore.Node) error {
	if err := s.check(); err != nil {
		return err
	}
	ba, err := s.codec.Encode(n)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(n.ID), ba, s.ttl).Err()
}

// Remove deletes the key, failing with ErrNodeNotFound when nothing was deleted.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	if err := s.check(); err != nil {
		return err
	}
	c, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if c == 0 {
		return nodestore.NodeNotFound(id)
	}
	return nil
}

func (s *Storage) Flush(ctx context.Context) error {
	return s.check()
}

// scan walks every node key under the prefix.
func (s *Storage) scan(ctx context.Context, visit func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := visit(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Clear deletes every key under the prefix. Other keys of the database are left alone.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.scan(ctx, func(keys []string) error {
		return s.client.Del(ctx, keys...).Err()
	})
}

// Dispose closes the connection when the storage opened it.
func (s *Storage) Dispose(ctx context.Context) error {
	if s.disposed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}

func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	return id
}

func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	c, err := s.client.Exists(ctx, s.key(id)).Result()
	return c > 0, err
}

// IDs lists the node ids under the prefix in ascending order. Keys that are not ids are skipped.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var ids []nodestore.NodeID
	err := s.scan(ctx, func(keys []string) error {
		for _, k := range keys {
			id, err := nodestore.ParseNodeID(strings.TrimPrefix(k, s.prefix+":"))
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	return slices.Compact(ids), err
}
