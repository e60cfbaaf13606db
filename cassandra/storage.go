package cassandra

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"slices"
	"sync/atomic"

	"github.com/gocql/gocql"

	"github.com/sharedcode/nodestore"
)

// Storage is the Cassandra node store. Writes are immediate, so Flush does nothing.
// Feature types and bounds are kept in process only.
type Storage struct {
	nodestore.Metadata
	conn     *Connection
	codec    nodestore.NodeCodec
	disposed atomic.Bool
}

// NewFromProperties opens (or shares) the session and the node table named by the cassandra properties.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	cfg, err := ConfigFromProperties(props)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// New opens a connection for cfg. Dispose releases it.
func New(cfg Config) (*Storage, error) {
	conn, err := OpenConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		conn:  conn,
		codec: nodestore.DefaultNodeCodec,
	}, nil
}

func (s *Storage) table() string {
	return s.conn.Keyspace + "." + s.conn.Table
}

func (s *Storage) check() error {
	if s.disposed.Load() {
		return nodestore.Disposed()
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var ba []byte
	qry := s.conn.Session.Query(fmt.Sprintf("SELECT node FROM %s WHERE id = ?;", s.table()), gocql.UUID(id)).WithContext(ctx)
	if err := qry.Scan(&ba); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	n, err := s.codec.Decode(ba)
	if err != nil {
		log.Warn("cassandra node failed to decode, treating as absent", "id", id, "error", err)
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
	return s.conn.Session.Query(fmt.Sprintf("INSERT INTO %s (id, node) VALUES (?, ?);", s.table()), gocql.UUID(n.ID), ba).WithContext(ctx).Exec()
}

// Remove is a lightweight transaction, failing with ErrNodeNotFound when no row was deleted.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	if err := s.check(); err != nil {
		return err
	}
	qry := s.conn.Session.Query(fmt.Sprintf("DELETE FROM %s WHERE id = ? IF EXISTS;", s.table()), gocql.UUID(id)).WithContext(ctx)
	applied, err := qry.MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return nodestore.NodeNotFound(id)
	}
	return nil
}

func (s *Storage) Flush(ctx context.Context) error {
	return s.check()
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.conn.Session.Query(fmt.Sprintf("TRUNCATE %s;", s.table())).WithContext(ctx).Exec()
}

func (s *Storage) Dispose(ctx context.Context) error {
	if s.disposed.Swap(true) {
		return nil
	}
	s.conn.Close()
	return nil
}

func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	return id
}

func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	var found gocql.UUID
	err := s.conn.Session.Query(fmt.Sprintf("SELECT id FROM %s WHERE id = ?;", s.table()), gocql.UUID(id)).WithContext(ctx).Scan(&found)
	if errors.Is(err, gocql.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// IDs pages through the whole table; intended for administration, not hot paths.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	iter := s.conn.Session.Query(fmt.Sprintf("SELECT id FROM %s;", s.table())).WithContext(ctx).Iter()
	var ids []nodestore.NodeID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, nodestore.NodeID(id))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	return ids, nil
}
