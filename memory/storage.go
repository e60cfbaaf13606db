// Package memory implements the in-process node storage: a map with no eviction and no persistence.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/sharedcode/nodestore"
)

// Storage keeps nodes in a map. Put overwrites, the same as the other backends.
type Storage struct {
	nodestore.Metadata
	mu       sync.RWMutex
	lookup   map[nodestore.NodeID]*nodestore.Node
	disposed bool
}

// New returns an empty memory storage.
func New() *Storage {
	return &Storage{
		lookup: make(map[nodestore.NodeID]*nodestore.Node),
	}
}

// NewFromProperties builds a memory storage. No property applies.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	return New(), nil
}

// Get returns the stored node, or nil.
func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	return s.lookup[id], nil
}

// Put upserts n.
func (s *Storage) Put(ctx context.Context, n *nodestore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	s.lookup[n.ID] = n
	return nil
}

// Remove deletes the node with id. Removing an absent node is a no-op.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	delete(s.lookup, id)
	return nil
}

// Flush does nothing for in-memory.
func (s *Storage) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	return nil
}

// Clear removes all nodes.
func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	s.lookup = make(map[nodestore.NodeID]*nodestore.Node)
	return nil
}

// Dispose drops all nodes; the storage is unusable afterwards.
func (s *Storage) Dispose(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookup = nil
	s.disposed = true
	return nil
}

// FindUniqueInstance returns id; NodeID values carry no identity beyond their bytes.
func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	return id
}

// Contains reports whether a node with id is stored.
func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return false, nodestore.Disposed()
	}
	_, ok := s.lookup[id]
	return ok, nil
}

// IDs returns the stored ids in ascending order.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	r := make([]nodestore.NodeID, 0, len(s.lookup))
	for id := range s.lookup {
		r = append(r, id)
	}
	slices.SortFunc(r, nodestore.NodeID.Compare)
	return r, nil
}

func (s *Storage) Stats() nodestore.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nodestore.Stats{Kind: nodestore.MemoryKind, Nodes: len(s.lookup)}
}
