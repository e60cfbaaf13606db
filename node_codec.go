package nodestore

import (
	"fmt"

	"github.com/sharedcode/nodestore/encoding"
)

// NodeCodec converts nodes to and from their stored byte form.
type NodeCodec interface {
	Encode(n *Node) ([]byte, error)
	Decode(data []byte) (*Node, error)
}

// DefaultNodeCodec is the versioned binary codec used by every backend unless overridden.
var DefaultNodeCodec NodeCodec = BinaryNodeCodec{}

const (
	nodeFormatVersion = 1
	nodeHeaderSize    = 1 + 16 + 4 + 4
	entryFixedSize    = 4*8 + 16 + 4
	payloadPrefixSize = 4
)

// BinaryNodeCodec encodes a node as:
//
//	version u8 | id [16] | level u32 | entry count u32 |
//	entries (minX minY maxX maxY f64, child [16], data len u32, data) |
//	payload len u32 | payload
type BinaryNodeCodec struct{}

// EncodedSize returns the exact number of bytes BinaryNodeCodec produces for n.
func EncodedSize(n *Node) int {
	size := nodeHeaderSize + payloadPrefixSize + len(n.Payload)
	for i := range n.Entries {
		size += entryFixedSize + len(n.Entries[i].Data)
	}
	return size
}

func (BinaryNodeCodec) Encode(n *Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("can't encode a nil node")
	}
	w := encoding.NewWriter(EncodedSize(n))
	w.PutUint8(nodeFormatVersion)
	w.PutRaw(n.ID[:])
	w.PutUint32(n.Level)
	w.PutUint32(uint32(len(n.Entries)))
	for i := range n.Entries {
		e := &n.Entries[i]
		w.PutFloat64(e.Bounds.MinX)
		w.PutFloat64(e.Bounds.MinY)
		w.PutFloat64(e.Bounds.MaxX)
		w.PutFloat64(e.Bounds.MaxY)
		w.PutRaw(e.Child[:])
		w.PutBytes(e.Data)
	}
	w.PutBytes(n.Payload)
	return w.Data(), nil
}

func (BinaryNodeCodec) Decode(data []byte) (*Node, error) {
	r := encoding.NewReader(data)
	if v := r.Uint8(); r.Err() == nil && v != nodeFormatVersion {
		return nil, Error{Code: DecodeFailure, Err: fmt.Errorf("unsupported node format version %d", v)}
	}
	n := &Node{}
	copy(n.ID[:], r.Raw(16))
	n.Level = r.Uint32()
	if c := r.Count(entryFixedSize); c > 0 {
		n.Entries = make([]Entry, c)
		for i := range n.Entries {
			e := &n.Entries[i]
			e.Bounds.MinX = r.Float64()
			e.Bounds.MinY = r.Float64()
			e.Bounds.MaxX = r.Float64()
			e.Bounds.MaxY = r.Float64()
			copy(e.Child[:], r.Raw(16))
			e.Data = r.Bytes()
		}
	}
	n.Payload = r.Bytes()
	if r.Err() != nil {
		return nil, Error{Code: DecodeFailure, Err: r.Err()}
	}
	if r.Remaining() != 0 {
		return nil, Error{Code: DecodeFailure, Err: fmt.Errorf("%d trailing bytes after node", r.Remaining())}
	}
	return n, nil
}
