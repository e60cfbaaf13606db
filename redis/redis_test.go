package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sharedcode/nodestore"
)

var ctx = context.Background()

func exercise(t *testing.T, s *Storage) {
	t.Helper()
	n := &nodestore.Node{
		ID:      nodestore.NewNodeID(),
		Entries: []nodestore.Entry{{Bounds: nodestore.NewEnvelope(0, 0, 2, 2), Data: []byte("feature")}},
		Payload: []byte("result"),
	}
	if err := s.Put(ctx, n); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, n.ID)
	if err != nil || !got.Equal(n) {
		t.Fatalf("Get got %v, %v", got, err)
	}
	if ok, _ := s.Contains(ctx, n.ID); !ok {
		t.Error("Contains false after Put")
	}
	ids, err := s.IDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != n.ID {
		t.Errorf("IDs got %v, %v", ids, err)
	}

	if err := s.Remove(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, n.ID); !errors.Is(err, nodestore.ErrNodeNotFound) {
		t.Errorf("second Remove got %v, want ErrNodeNotFound", err)
	}
	if got, err := s.Get(ctx, n.ID); got != nil || err != nil {
		t.Errorf("Get after Remove got %v, %v", got, err)
	}

	for i := 0; i < 3; i++ {
		s.Put(ctx, nodestore.NewNode(nil))
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.IDs(ctx); len(ids) != 0 {
		t.Errorf("IDs after Clear got %v", ids)
	}
}

func TestStorageWithMock(t *testing.T) {
	s := New(NewMockClient(), DefaultOptions())
	exercise(t, s)
	s.Dispose(ctx)
	if _, err := s.Get(ctx, nodestore.NewNodeID()); !errors.Is(err, nodestore.ErrDisposed) {
		t.Errorf("Get after Dispose got %v", err)
	}
}

func TestClearKeepsForeignKeys(t *testing.T) {
	client := NewMockClient()
	client.Set(ctx, "other:key", "keep", 0)
	s := New(client, DefaultOptions())
	s.Put(ctx, nodestore.NewNode(nil))
	s.Clear(ctx)
	if v, err := client.Get(ctx, "other:key").Result(); err != nil || v != "keep" {
		t.Errorf("foreign key got %q, %v", v, err)
	}
}

func TestUndecodableValueReadsAsAbsent(t *testing.T) {
	client := NewMockClient()
	s := New(client, DefaultOptions())
	id := nodestore.NewNodeID()
	client.Set(ctx, s.key(id), []byte{0xff, 0x01}, 0)
	if got, err := s.Get(ctx, id); got != nil || err != nil {
		t.Errorf("Get of garbage got %v, %v", got, err)
	}
}

func TestOptionsFromProperties(t *testing.T) {
	opts, err := OptionsFromProperties(nodestore.Properties{
		nodestore.RedisAddressProperty: "cache:6380",
		nodestore.RedisDBProperty:      "2",
		nodestore.RedisTTLProperty:     "90s",
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Address != "cache:6380" || opts.DB != 2 || opts.TTL.Seconds() != 90 || opts.Prefix != "nodes" {
		t.Errorf("options got %+v", opts)
	}
}

// Runs against a live server, e.g. NODESTORE_REDIS_TEST=1 with Redis on localhost:6379.
func TestStorageWithRedis(t *testing.T) {
	if os.Getenv("NODESTORE_REDIS_TEST") == "" {
		t.Skip("set NODESTORE_REDIS_TEST to run against a live Redis")
	}
	st, err := NewFromProperties(ctx, nodestore.Properties{nodestore.RedisPrefixProperty: "nodestore_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Dispose(ctx)
	s := st.(*Storage)
	s.Clear(ctx)
	exercise(t, s)
}
