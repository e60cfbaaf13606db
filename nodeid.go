package nodestore

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// NodeID identifies a node within a storage. It wraps github.com/google/uuid.UUID;
// being a comparable array, equality is by value and never by identity.
type NodeID uuid.UUID

// ParseNodeID converts a string to a NodeID. It returns an error if the input is not a valid UUID.
func ParseNodeID(id string) (NodeID, error) {
	u, err := uuid.Parse(id)
	return NodeID(u), err
}

// NewNodeID returns a new randomly generated NodeID. It retries on error with a 1ms backoff up to 10 times
// and panics only if all attempts fail.
func NewNodeID() NodeID {
	var err error
	for i := 0; i < 10; i++ {
		var id uuid.UUID
		id, err = uuid.NewRandom()
		if err == nil {
			return NodeID(id)
		}
		time.Sleep(time.Millisecond)
	}
	panic(err)
}

// NilNodeID is the zero-value NodeID.
var NilNodeID NodeID

// IsNil reports whether the id equals the zero-value NodeID.
func (id NodeID) IsNil() bool {
	return id == NilNodeID
}

// String returns the canonical string representation of the id.
func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Compare returns -1 if x < y, 1 if x > y, and 0 if they are equal.
func (x NodeID) Compare(y NodeID) int {
	return bytes.Compare(x[:], y[:])
}
