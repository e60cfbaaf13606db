// Package buffered implements the write-back LRU front cache of the disk node store.
package buffered

import (
	"context"
	"errors"
	log "log/slog"
	"slices"
	"sync"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/cache"
	"github.com/sharedcode/nodestore/disk"
)

// DefaultBufferSize is the LRU capacity used when the buffer size property is absent.
const DefaultBufferSize = 1024

// Backend is the store a buffered Storage writes back to.
type Backend interface {
	nodestore.Storage
	Contains(ctx context.Context, id nodestore.NodeID) (bool, error)
}

// Storage keeps the most recently used nodes in an LRU and writes modified ones back to its
// Backend on Flush or when they are evicted. Dirty nodes never leave the buffer unwritten.
type Storage struct {
	mu        sync.Mutex
	backend   Backend
	buffer    *cache.LRU[nodestore.NodeID, *nodestore.Node]
	dirty     map[nodestore.NodeID]struct{}
	hits      int64
	misses    int64
	evictions int64
	disposed  bool
}

// New wraps backend with a buffer of bufferSize nodes.
func New(backend Backend, bufferSize int) *Storage {
	return &Storage{
		backend: backend,
		buffer:  cache.NewLRU[nodestore.NodeID, *nodestore.Node](bufferSize),
		dirty:   make(map[nodestore.NodeID]struct{}),
	}
}

// NewFromProperties opens a disk storage from the disk properties and buffers it.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	size, err := props.Int(nodestore.BufferSizeProperty, DefaultBufferSize)
	if err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, nodestore.Error{Code: nodestore.ConfigurationError, Err: errors.New("buffer size must be positive"), UserData: size}
	}
	opts, err := disk.OptionsFromProperties(props)
	if err != nil {
		return nil, err
	}
	backend, err := disk.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return New(backend, size), nil
}

// Backend returns the wrapped store.
func (s *Storage) Backend() Backend {
	return s.backend
}

// Get serves id from the buffer, loading it from the backend on a miss.
func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	if n, ok := s.buffer.Get(id); ok {
		s.hits++
		return n, nil
	}
	s.misses++
	n, err := s.backend.Get(ctx, id)
	if err != nil || n == nil {
		return n, err
	}
	if err := s.makeRoom(ctx); err != nil {
		log.Warn("node read but not buffered, eviction failed", "id", id, "error", err)
		return n, nil
	}
	s.buffer.Set(n.ID, n)
	return n, nil
}

// Put buffers n and marks it dirty. Replacing a buffered node refreshes its recency.
func (s *Storage) Put(ctx context.Context, n *nodestore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	if !s.buffer.Contains(n.ID) {
		if err := s.makeRoom(ctx); err != nil {
			return err
		}
	}
	s.buffer.Set(n.ID, n)
	s.dirty[n.ID] = struct{}{}
	return nil
}

// makeRoom evicts the least recently used node when the buffer is full, writing it back first
// if it is dirty. A failed write leaves the buffer untouched.
func (s *Storage) makeRoom(ctx context.Context) error {
	if !s.buffer.IsFull() {
		return nil
	}
	id, n, ok := s.buffer.Oldest()
	if !ok {
		return nil
	}
	if _, dirty := s.dirty[id]; dirty {
		if err := s.backend.Put(ctx, n); err != nil {
			return err
		}
		delete(s.dirty, id)
	}
	s.buffer.Delete(id)
	s.evictions++
	return nil
}

// Remove drops id from the buffer and deletes it from the backend if stored there.
// An id known to neither fails with ErrNodeNotFound.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	stored, err := s.backend.Contains(ctx, id)
	if err != nil {
		return err
	}
	if stored {
		if err := s.backend.Remove(ctx, id); err != nil {
			return err
		}
	}
	buffered := s.buffer.Delete(id)
	delete(s.dirty, id)
	if !stored && !buffered {
		return nodestore.NodeNotFound(id)
	}
	return nil
}

// Peek returns the latest version of id without touching the buffer's recency or counters.
// A node that is not buffered is read from the backend and left unbuffered.
func (s *Storage) Peek(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	if n, ok := s.buffer.Peek(id); ok {
		return n, nil
	}
	return s.backend.Get(ctx, id)
}

// Flush writes every dirty node back, in id order, then flushes the backend.
func (s *Storage) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	return s.flush(ctx)
}

func (s *Storage) flush(ctx context.Context) error {
	ids := make([]nodestore.NodeID, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	for _, id := range ids {
		if n, ok := s.buffer.Peek(id); ok {
			if err := s.backend.Put(ctx, n); err != nil {
				return err
			}
		}
		delete(s.dirty, id)
	}
	return s.backend.Flush(ctx)
}

// Clear empties the buffer and the backend.
func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	s.buffer.Clear()
	clear(s.dirty)
	return s.backend.Clear(ctx)
}

// Dispose flushes, empties the buffer and disposes the backend.
func (s *Storage) Dispose(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	err := s.flush(ctx)
	if err != nil {
		log.Error("flush on dispose failed, dirty nodes are lost", "dirty", len(s.dirty), "error", err)
	}
	s.buffer.Clear()
	clear(s.dirty)
	s.disposed = true
	return errors.Join(err, s.backend.Dispose(ctx))
}

// FindUniqueInstance returns the buffered instance of id, else asks the backend.
func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	s.mu.Lock()
	n, ok := s.buffer.Peek(id)
	s.mu.Unlock()
	if ok {
		return n.ID
	}
	return s.backend.FindUniqueInstance(id)
}

// Contains reports whether id is buffered or stored by the backend.
func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false, nodestore.Disposed()
	}
	if s.buffer.Contains(id) {
		return true, nil
	}
	return s.backend.Contains(ctx, id)
}

// IDs is the union of the buffered ids and the backend's, when the backend can list them.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	ids := s.buffer.Keys()
	if l, ok := s.backend.(nodestore.Lister); ok {
		stored, err := l.IDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, stored...)
	}
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	return slices.Compact(ids), nil
}

// Stats reports the buffer counters on top of the backend's. Nodes counts persisted nodes only.
func (s *Storage) Stats() nodestore.Stats {
	var st nodestore.Stats
	if sp, ok := s.backend.(nodestore.StatsProvider); ok {
		st = sp.Stats()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Kind = nodestore.BufferedDiskKind
	st.Buffered = s.buffer.Count()
	st.Capacity = s.buffer.Capacity()
	st.Dirty = len(s.dirty)
	st.Hits = s.hits
	st.Misses = s.misses
	st.Evictions = s.evictions
	return st
}

// Metadata lives in the backend so the disk index persists it.

func (s *Storage) FeatureTypes() []nodestore.FeatureType { return s.backend.FeatureTypes() }

func (s *Storage) AddFeatureType(ft nodestore.FeatureType) { s.backend.AddFeatureType(ft) }

func (s *Storage) ClearFeatureTypes() { s.backend.ClearFeatureTypes() }

func (s *Storage) Bounds() *nodestore.Envelope { return s.backend.Bounds() }

func (s *Storage) SetBounds(b *nodestore.Envelope) { s.backend.SetBounds(b) }

func (s *Storage) ClearBounds() { s.backend.ClearBounds() }
