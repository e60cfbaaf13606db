package cel

import (
	"testing"

	"github.com/sharedcode/nodestore"
)

func TestLevelAndPayloadFilter(t *testing.T) {
	e, err := NewEvaluator("filter", "node.level == 0 && node.payload_size > 3")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	leaf := nodestore.NewNode([]byte("cached"))
	r, err := e.Matches(leaf)
	if err != nil || !r {
		t.Errorf("expected leaf to match, got %v, %v", r, err)
	}
	inner := &nodestore.Node{ID: nodestore.NewNodeID(), Level: 1, Payload: []byte("cached")}
	if r, _ := e.Matches(inner); r {
		t.Error("expected internal node not to match")
	}
}

func TestBoundsFilter(t *testing.T) {
	e, err := NewEvaluator("filter", "has(node.bounds) && node.bounds.max_x > 10.0")
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	n := &nodestore.Node{
		ID: nodestore.NewNodeID(),
		Entries: []nodestore.Entry{
			{Bounds: nodestore.NewEnvelope(0, 0, 5, 5)},
			{Bounds: nodestore.NewEnvelope(8, 8, 12, 9)},
		},
	}
	if r, err := e.Matches(n); err != nil || !r {
		t.Errorf("expected match on union bounds, got %v, %v", r, err)
	}
	if r, _ := e.Matches(nodestore.NewNode(nil)); r {
		t.Error("expected node without entries not to match")
	}
}

func TestRejectsBadExpressions(t *testing.T) {
	if _, err := NewEvaluator("filter", "node.level +"); err == nil {
		t.Error("expected compile error")
	}
	if _, err := NewEvaluator("filter", "1 + 2"); err == nil {
		t.Error("expected non bool expression to be rejected")
	}
	if _, err := NewEvaluator("", "true"); err == nil {
		t.Error("expected empty name to be rejected")
	}
}
