package cassandra

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"

	"github.com/sharedcode/nodestore"
)

var ctx = context.Background()

func TestConfigFromProperties(t *testing.T) {
	cfg, err := ConfigFromProperties(nodestore.Properties{
		nodestore.CassandraHostsProperty:    "10.0.0.1, 10.0.0.2",
		nodestore.CassandraKeyspaceProperty: "geo",
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg.applyDefaults()
	if len(cfg.ClusterHosts) != 2 || cfg.Keyspace != "geo" || cfg.Table != "nodes" {
		t.Errorf("config got %+v", cfg)
	}
	if _, err := ConfigFromProperties(nodestore.Properties{}); !errors.Is(err, nodestore.ErrMissingProperty) {
		t.Errorf("missing hosts got %v", err)
	}
}

func TestClusterConfigPerConnection(t *testing.T) {
	a := Config{ClusterHosts: []string{"10.0.0.1"}}
	a.applyDefaults()
	b := Config{
		ClusterHosts:      []string{"10.0.0.2", "10.0.0.3"},
		Consistency:       gocql.One,
		ConnectionTimeout: 3 * time.Second,
		Authenticator:     gocql.PasswordAuthenticator{Username: "geo", Password: "secret"},
	}
	b.applyDefaults()

	ca, cb := newCluster(a), newCluster(b)
	if len(ca.Hosts) != 1 || ca.Hosts[0] != "10.0.0.1" || ca.Consistency != gocql.LocalQuorum || ca.Authenticator != nil {
		t.Errorf("first cluster got hosts %v, consistency %v", ca.Hosts, ca.Consistency)
	}
	if len(cb.Hosts) != 2 || cb.Consistency != gocql.One || cb.ConnectTimeout != 3*time.Second {
		t.Errorf("second cluster got hosts %v, consistency %v, timeout %v", cb.Hosts, cb.Consistency, cb.ConnectTimeout)
	}
	if auth, ok := cb.Authenticator.(gocql.PasswordAuthenticator); !ok || auth.Username != "geo" {
		t.Errorf("second cluster authenticator got %v", cb.Authenticator)
	}
}

func TestOpenConnectionUnreachable(t *testing.T) {
	conn, err := OpenConnection(Config{ClusterHosts: []string{"127.0.0.1:1"}, ConnectionTimeout: 200 * time.Millisecond})
	if err == nil {
		conn.Close()
		t.Fatal("expected an error opening an unreachable cluster")
	}
	if conn != nil {
		t.Errorf("got a connection %v alongside the error", conn)
	}
	// Closing a nil or already closed connection is a no-op.
	var nilConn *Connection
	nilConn.Close()
	(&Connection{}).Close()
}

// Runs against a live cluster, e.g. NODESTORE_CASSANDRA_TEST=localhost.
func TestStorageWithCassandra(t *testing.T) {
	hosts := os.Getenv("NODESTORE_CASSANDRA_TEST")
	if hosts == "" {
		t.Skip("set NODESTORE_CASSANDRA_TEST to the cluster hosts to run against a live Cassandra")
	}
	s, err := New(Config{ClusterHosts: strings.Split(hosts, ","), Keyspace: "nodestore_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose(ctx)
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	n := &nodestore.Node{ID: nodestore.NewNodeID(), Level: 2, Payload: []byte("cached")}
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
	if ids, _ := s.IDs(ctx); len(ids) != 1 {
		t.Errorf("IDs got %v", ids)
	}
	if err := s.Remove(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, n.ID); !errors.Is(err, nodestore.ErrNodeNotFound) {
		t.Errorf("second Remove got %v", err)
	}
}
