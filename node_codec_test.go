package nodestore

import "testing"

func sampleNode() *Node {
	return &Node{
		ID:    NewNodeID(),
		Level: 2,
		Entries: []Entry{
			{Bounds: NewEnvelope(0, 0, 1, 1), Child: NewNodeID()},
			{Bounds: NewEnvelope(-5, 2, 3, 7.5), Data: []byte("feature")},
		},
		Payload: []byte("cached result"),
	}
}

func TestNodeCodecRoundTrip(t *testing.T) {
	n := sampleNode()
	b, err := DefaultNodeCodec.Encode(n)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != EncodedSize(n) {
		t.Errorf("got %d bytes, EncodedSize says %d", len(b), EncodedSize(n))
	}
	got, err := DefaultNodeCodec.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(n) {
		t.Errorf("decoded node differs, got %+v, want %+v", got, n)
	}
}

func TestNodeCodecEmptyNode(t *testing.T) {
	n := &Node{ID: NewNodeID()}
	if EncodedSize(n) != 29 {
		t.Errorf("empty node size is %d, expected 29", EncodedSize(n))
	}
	b, _ := DefaultNodeCodec.Encode(n)
	got, err := DefaultNodeCodec.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != n.ID || len(got.Entries) != 0 || len(got.Payload) != 0 {
		t.Errorf("unexpected decoded node %+v", got)
	}
}

func TestNodeCodecEncodeNil(t *testing.T) {
	if _, err := DefaultNodeCodec.Encode(nil); err == nil {
		t.Error("expected error encoding a nil node")
	}
}

func TestNodeCodecRejectsBadInput(t *testing.T) {
	b, _ := DefaultNodeCodec.Encode(sampleNode())

	badVersion := append([]byte{}, b...)
	badVersion[0] = 99
	trailing := append(append([]byte{}, b...), 0, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad version", badVersion},
		{"truncated header", b[:10]},
		{"truncated payload", b[:len(b)-3]},
		{"trailing bytes", trailing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultNodeCodec.Decode(tt.data)
			if err == nil {
				t.Fatal("expected decode failure")
			}
			if CodeOf(err) != DecodeFailure {
				t.Errorf("got code %d, expected DecodeFailure", CodeOf(err))
			}
		})
	}
}

func TestNodeCodecHugeEntryCount(t *testing.T) {
	n := &Node{ID: NewNodeID()}
	b, _ := DefaultNodeCodec.Encode(n)
	// Entry count sits right after version, id and level.
	b[21], b[22], b[23], b[24] = 0xff, 0xff, 0xff, 0x7f
	if _, err := DefaultNodeCodec.Decode(b); err == nil {
		t.Error("expected a bogus entry count to fail")
	}
}

func TestNodeBoundsAndClone(t *testing.T) {
	n := sampleNode()
	b := n.Bounds()
	if b == nil || *b != NewEnvelope(-5, 0, 3, 7.5) {
		t.Errorf("unexpected bounds %v", b)
	}
	if (&Node{}).Bounds() != nil {
		t.Error("node without entries has no bounds")
	}

	c := n.Clone()
	if !c.Equal(n) {
		t.Fatal("clone differs")
	}
	c.Payload[0] = 'X'
	c.Entries[1].Data[0] = 'X'
	if c.Equal(n) {
		t.Error("clone shares memory with the original")
	}
	var nilNode *Node
	if nilNode.Clone() != nil || !nilNode.Equal(nil) || nilNode.Equal(n) {
		t.Error("nil node handling is off")
	}
}
