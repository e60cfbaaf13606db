// Package factory maps a configuration bag to a storage backend.
package factory

import (
	"context"
	log "log/slog"
	"sync"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/buffered"
	"github.com/sharedcode/nodestore/cassandra"
	"github.com/sharedcode/nodestore/disk"
	"github.com/sharedcode/nodestore/memory"
	"github.com/sharedcode/nodestore/redis"
	"github.com/sharedcode/nodestore/s3"
)

// Constructor builds a storage from the configuration bag.
type Constructor func(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error)

// Factory dispatches storage construction on the storage type property.
type Factory struct {
	mu       sync.RWMutex
	registry map[nodestore.Kind]Constructor
}

// New returns a Factory with every built-in backend registered.
func New() *Factory {
	return &Factory{
		registry: map[nodestore.Kind]Constructor{
			nodestore.MemoryKind:       memory.NewFromProperties,
			nodestore.DiskKind:         disk.NewFromProperties,
			nodestore.BufferedDiskKind: buffered.NewFromProperties,
			nodestore.RedisKind:        redis.NewFromProperties,
			nodestore.CassandraKind:    cassandra.NewFromProperties,
			nodestore.S3Kind:           s3.NewFromProperties,
		},
	}
}

// Register sets, or replaces, the constructor of kind.
func (f *Factory) Register(kind nodestore.Kind, c Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[kind] = c
}

// Create builds the storage named by props[nodestore.StorageTypeProperty]. A missing or unknown
// type falls back to the memory storage.
func (f *Factory) Create(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	tag := props.String(nodestore.StorageTypeProperty, "")
	kind, err := nodestore.ParseKind(tag)
	if err != nil {
		log.Warn("unknown storage type, using memory storage", "type", tag)
		kind = nodestore.MemoryKind
	}
	f.mu.RLock()
	c, ok := f.registry[kind]
	f.mu.RUnlock()
	if !ok {
		log.Warn("no constructor registered, using memory storage", "kind", kind)
		c = memory.NewFromProperties
	}
	log.Debug("creating storage", "kind", kind)
	return c(ctx, props)
}
