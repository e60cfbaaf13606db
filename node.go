package nodestore

import (
	"bytes"
	"slices"
)

// Node is one element of the spatial index tree as seen by the storage layer.
// Storages never interpret Entries or Payload; they only round trip them.
type Node struct {
	// ID is mutable: storages replace it with their canonical instance on read.
	ID NodeID
	// Level is the height above the leaves, 0 for a leaf.
	Level uint32
	// Entries are the node's children (internal levels) or features (leaf level).
	Entries []Entry
	// Payload carries the cached query result bytes attached to this node.
	Payload []byte
}

// Entry is a single slot of a Node.
type Entry struct {
	Bounds Envelope
	// Child points to the child node on internal levels; nil on leaves.
	Child NodeID
	// Data holds the encoded feature on leaves.
	Data []byte
}

// NewNode returns a leaf node with a fresh id.
func NewNode(payload []byte) *Node {
	return &Node{
		ID:      NewNodeID(),
		Payload: payload,
	}
}

// IsLeaf reports whether the node sits on the leaf level.
func (n *Node) IsLeaf() bool {
	return n.Level == 0
}

// Bounds returns the union of all entry bounds, or nil when the node has no entries.
func (n *Node) Bounds() *Envelope {
	if len(n.Entries) == 0 {
		return nil
	}
	r := n.Entries[0].Bounds
	for i := 1; i < len(n.Entries); i++ {
		r = r.Union(n.Entries[i].Bounds)
	}
	return &r
}

// Equal compares two nodes by value. Nil and empty byte slices are considered equal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || n.Level != o.Level || !bytes.Equal(n.Payload, o.Payload) {
		return false
	}
	return slices.EqualFunc(n.Entries, o.Entries, func(a, b Entry) bool {
		return a.Bounds == b.Bounds && a.Child == b.Child && bytes.Equal(a.Data, b.Data)
	})
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:      n.ID,
		Level:   n.Level,
		Payload: bytes.Clone(n.Payload),
	}
	if n.Entries != nil {
		c.Entries = make([]Entry, len(n.Entries))
		for i := range n.Entries {
			c.Entries[i] = Entry{
				Bounds: n.Entries[i].Bounds,
				Child:  n.Entries[i].Child,
				Data:   bytes.Clone(n.Entries[i].Data),
			}
		}
	}
	return c
}
