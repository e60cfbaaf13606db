package nodestore

import (
	"context"
	"fmt"
	"strings"
)

// MetadataHolder is the metadata half of the Storage contract.
type MetadataHolder interface {
	FeatureTypes() []FeatureType
	AddFeatureType(ft FeatureType)
	ClearFeatureTypes()
	Bounds() *Envelope
	SetBounds(b *Envelope)
	ClearBounds()
}

// Storage is the contract every node store backend implements.
type Storage interface {
	MetadataHolder

	// Get returns the node with id, or nil with a nil error when it is absent.
	Get(ctx context.Context, id NodeID) (*Node, error)
	// Put inserts or overwrites n, keyed by n.ID.
	Put(ctx context.Context, n *Node) error
	// Remove deletes the node with id. Backends that fail on unknown ids return an
	// InvalidArgument error wrapping ErrNodeNotFound.
	Remove(ctx context.Context, id NodeID) error
	// Flush forces buffered state to the backing medium. It is idempotent.
	Flush(ctx context.Context) error
	// Clear removes every node and forgets all allocation state.
	Clear(ctx context.Context) error
	// Dispose flushes and releases the underlying resources. No call is valid afterwards.
	Dispose(ctx context.Context) error
	// FindUniqueInstance returns the canonical id equal to id held by the storage, or id itself.
	FindUniqueInstance(id NodeID) NodeID
}

// Lister is implemented by storages that can enumerate their node ids.
type Lister interface {
	IDs(ctx context.Context) ([]NodeID, error)
}

// Peeker is implemented by storages whose Get has side effects, such as cache recency. Peek
// reads a node without them, for scans that should not disturb the working set.
type Peeker interface {
	Peek(ctx context.Context, id NodeID) (*Node, error)
}

// Stats is a point in time summary of a storage.
type Stats struct {
	Kind      Kind  `json:"kind"`
	Nodes     int   `json:"nodes"`
	PageSize  int   `json:"page_size,omitempty"`
	NextPage  int64 `json:"next_page,omitempty"`
	FreePages int   `json:"free_pages,omitempty"`
	Buffered  int   `json:"buffered,omitempty"`
	Capacity  int   `json:"capacity,omitempty"`
	Dirty     int   `json:"dirty,omitempty"`
	Hits      int64 `json:"hits,omitempty"`
	Misses    int64 `json:"misses,omitempty"`
	Evictions int64 `json:"evictions,omitempty"`
}

// StatsProvider is implemented by storages that report Stats.
type StatsProvider interface {
	Stats() Stats
}

// Kind enumerates the storage backends.
type Kind int

const (
	MemoryKind Kind = iota
	DiskKind
	BufferedDiskKind
	RedisKind
	CassandraKind
	S3Kind
)

var kindNames = map[Kind]string{
	MemoryKind:       "memory",
	DiskKind:         "disk",
	BufferedDiskKind: "buffered-disk",
	RedisKind:        "redis",
	CassandraKind:    "cassandra",
	S3Kind:           "s3",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a backend tag to its Kind. Matching is case insensitive.
func ParseKind(tag string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	for k, s := range kindNames {
		if s == t {
			return k, nil
		}
	}
	return MemoryKind, Error{Code: ConfigurationError, Err: fmt.Errorf("unknown storage type %q", tag)}
}
