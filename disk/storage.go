// Package disk implements the paged node store: nodes are serialized, split into fixed size pages
// of a flat data file, and tracked by a page index that is persisted on Flush.
package disk

import (
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/pagealloc"
)

// Storage is the disk backed node store. All methods are serialized by one mutex.
type Storage struct {
	nodestore.Metadata
	mu         sync.Mutex
	opts       Options
	pages      PageIO
	alloc      *pagealloc.Allocator
	index      map[nodestore.NodeID]*entry
	indexStore IndexStore
	scratch    []byte
	disposed   bool
}

// NewFromProperties builds a disk storage from the disk properties.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	opts, err := OptionsFromProperties(props)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// New opens the store. An existing index file is reloaded along with its page size; a missing
// or unreadable one starts an empty store over a truncated data file.
func New(ctx context.Context, opts Options) (*Storage, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	s := &Storage{
		opts:  opts,
		index: make(map[nodestore.NodeID]*entry),
	}
	if opts.IndexFile != "" {
		s.indexStore = NewFileIndexStore(opts.IndexFile)
		if opts.IndexErasure != nil {
			es, err := NewErasureIndexStore(s.indexStore, opts.IndexFile, *opts.IndexErasure, verifyIndex)
			if err != nil {
				return nil, err
			}
			s.indexStore = es
		}
	}

	snap, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if err := s.initializeFromIndex(ctx, snap); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.initializeEmpty(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// loadIndex returns the persisted snapshot, or nil when there is none or it cannot be trusted.
func (s *Storage) loadIndex(ctx context.Context) (*indexSnapshot, error) {
	if s.indexStore == nil {
		return nil, nil
	}
	data, err := s.indexStore.Load(ctx)
	if err != nil {
		log.Warn("index file unreadable, starting empty", "path", s.opts.IndexFile, "error", err)
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}
	snap, err := decodeIndex(data)
	if err != nil {
		log.Warn("index file corrupt, starting empty", "path", s.opts.IndexFile, "error", err)
		return nil, nil
	}
	return snap, nil
}

func (s *Storage) initializeFromIndex(ctx context.Context, snap *indexSnapshot) error {
	if s.opts.PageSize > 0 && s.opts.PageSize != snap.pageSize {
		log.Warn("configured page size differs from the index, using the index", "configured", s.opts.PageSize, "index", snap.pageSize)
	}
	s.opts.PageSize = snap.pageSize
	if err := s.opts.normalize(); err != nil {
		return err
	}
	alloc, err := pagealloc.New(snap.pageSize, snap.nextPage, snap.free)
	if err != nil {
		return nodestore.Error{Code: nodestore.DecodeFailure, Err: err}
	}
	pf, err := openPageFile(ctx, s.opts.DataFile, snap.pageSize, s.opts.DirectIO, false)
	if err != nil {
		return err
	}
	s.pages = pf
	s.scratch = pf.NewScratch()
	s.alloc = alloc
	for _, e := range snap.entries {
		s.index[e.id] = e
	}
	for _, ft := range snap.featureTypes {
		s.AddFeatureType(ft)
	}
	s.SetBounds(snap.bounds)
	log.Debug("disk storage reloaded", "index", s.opts.IndexFile, "nodes", len(s.index), "pageSize", snap.pageSize,
		"dataSize", humanize.IBytes(uint64(snap.nextPage)*uint64(snap.pageSize)))
	return nil
}

func (s *Storage) initializeEmpty(ctx context.Context) error {
	if s.opts.PageSize <= 0 {
		return nodestore.Error{
			Code:     nodestore.ConfigurationError,
			Err:      fmt.Errorf("%s: %w", nodestore.PageSizeProperty, nodestore.ErrMissingProperty),
			UserData: nodestore.PageSizeProperty,
		}
	}
	alloc, err := pagealloc.New(s.opts.PageSize, 0, nil)
	if err != nil {
		return nodestore.Error{Code: nodestore.ConfigurationError, Err: err}
	}
	pf, err := openPageFile(ctx, s.opts.DataFile, s.opts.PageSize, s.opts.DirectIO, true)
	if err != nil {
		return err
	}
	s.pages = pf
	s.scratch = pf.NewScratch()
	s.alloc = alloc
	if s.indexStore != nil {
		if err := s.indexStore.Save(ctx, encodeIndex(s.snapshot())); err != nil {
			pf.Close()
			return err
		}
	}
	return nil
}

func (s *Storage) snapshot() *indexSnapshot {
	entries := make([]*entry, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, e)
	}
	return &indexSnapshot{
		pageSize:     s.alloc.PageSize(),
		nextPage:     s.alloc.NextPage(),
		free:         s.alloc.FreePages(),
		entries:      entries,
		bounds:       s.Bounds(),
		featureTypes: s.FeatureTypes(),
	}
}

// Get reads the node with id. A node whose bytes no longer decode is logged and reported absent.
func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	e, ok := s.index[id]
	if !ok {
		return nil, nil
	}
	data, err := pagealloc.ReadPayload(s.pages, s.alloc.PageSize(), e.pages, e.length, s.scratch)
	if err != nil {
		return nil, err
	}
	n, err := s.opts.Codec.Decode(data)
	if err != nil {
		log.Warn("node failed to decode, treating as absent", "id", id, "pages", e.pages, "error", err)
		return nil, nil
	}
	if n.ID != e.id {
		log.Warn("node on disk carries a different id, treating as absent", "id", id, "found", n.ID)
		return nil, nil
	}
	n.ID = e.id
	return n, nil
}

// Put serializes n onto pages, reusing the pages of its previous version first. If a page write
// fails, the node's previous version is dropped too since its pages may be half overwritten.
func (s *Storage) Put(ctx context.Context, n *nodestore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	data, err := s.opts.Codec.Encode(n)
	if err != nil {
		return err
	}
	var old []int64
	if e, ok := s.index[n.ID]; ok {
		old = e.pages
	}
	pages := s.alloc.Assign(old, len(data))
	if err := pagealloc.WritePayload(s.pages, s.alloc.PageSize(), pages, data, s.scratch); err != nil {
		s.alloc.Rollback(old, pages)
		if old != nil {
			s.alloc.Release(old)
			delete(s.index, n.ID)
		}
		log.Error("node write failed", "id", n.ID, "error", err)
		return err
	}
	s.alloc.Commit(old, pages)
	s.index[n.ID] = &entry{id: n.ID, length: len(data), pages: pages}
	return nil
}

// Remove frees the pages of the node with id. Unknown ids fail with ErrNodeNotFound.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	e, ok := s.index[id]
	if !ok {
		return nodestore.NodeNotFound(id)
	}
	s.alloc.Release(e.pages)
	delete(s.index, id)
	return nil
}

// Flush syncs the data file and rewrites the index file, if one is configured.
func (s *Storage) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	return s.flush(ctx)
}

func (s *Storage) flush(ctx context.Context) error {
	if err := s.pages.Sync(); err != nil {
		return err
	}
	if s.indexStore == nil {
		return nil
	}
	return s.indexStore.Save(ctx, encodeIndex(s.snapshot()))
}

// Clear drops every node and truncates the data file. Feature types and bounds are kept.
func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nodestore.Disposed()
	}
	s.index = make(map[nodestore.NodeID]*entry)
	s.alloc.Reset()
	return s.pages.Truncate()
}

// Dispose flushes and closes the data file. Calling it again is a no-op.
func (s *Storage) Dispose(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	err := s.flush(ctx)
	if cerr := s.pages.Close(); err == nil {
		err = cerr
	}
	s.disposed = true
	s.index = nil
	return err
}

// FindUniqueInstance returns the id instance held by the index when one equals id.
func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.index[id]; ok {
		return e.id
	}
	return id
}

// Contains reports whether a node with id is indexed.
func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false, nodestore.Disposed()
	}
	_, ok := s.index[id]
	return ok, nil
}

// IDs lists the indexed node ids in ascending order.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nodestore.Disposed()
	}
	ids := make([]nodestore.NodeID, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	return ids, nil
}

func (s *Storage) Stats() nodestore.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := nodestore.Stats{Kind: nodestore.DiskKind, Nodes: len(s.index)}
	if s.alloc != nil {
		st.PageSize = s.alloc.PageSize()
		st.NextPage = s.alloc.NextPage()
		st.FreePages = s.alloc.FreeCount()
	}
	return st
}

// PageSize is the page size in effect, which may come from a reloaded index.
func (s *Storage) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.PageSize()
}

// Pages returns a copy of the pages owned by id, nil if it is not indexed.
func (s *Storage) Pages(id nodestore.NodeID) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.index[id]; ok {
		return slices.Clone(e.pages)
	}
	return nil
}

// FreePages returns the free pages in ascending order.
func (s *Storage) FreePages() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.FreePages()
}
