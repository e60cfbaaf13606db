// Package cassandra stores nodes as blobs in a Cassandra table keyed by node id.
package cassandra

import (
	"fmt"
	log "log/slog"
	"time"

	"github.com/gocql/gocql"

	"github.com/sharedcode/nodestore"
)

// Config contains configuration for connecting to a Cassandra cluster and the node keyspace.
type Config struct {
	// ClusterHosts lists contact points for the Cassandra cluster.
	ClusterHosts []string
	// Keyspace is the keyspace holding the node table.
	Keyspace string
	// Table holds one row per node.
	Table string
	// Consistency is the default consistency level for queries.
	Consistency gocql.Consistency
	// ConnectionTimeout is the session connection timeout.
	ConnectionTimeout time.Duration
	// Authenticator is used when the cluster requires authentication.
	Authenticator gocql.Authenticator
	// ReplicationClause defines the keyspace replication (e.g., SimpleStrategy).
	ReplicationClause string
}

// ConfigFromProperties reads the cassandra properties.
func ConfigFromProperties(props nodestore.Properties) (Config, error) {
	hosts := props.List(nodestore.CassandraHostsProperty)
	if len(hosts) == 0 {
		return Config{}, nodestore.Error{
			Code:     nodestore.ConfigurationError,
			Err:      fmt.Errorf("%s: %w", nodestore.CassandraHostsProperty, nodestore.ErrMissingProperty),
			UserData: nodestore.CassandraHostsProperty,
		}
	}
	return Config{
		ClusterHosts: hosts,
		Keyspace:     props.String(nodestore.CassandraKeyspaceProperty, ""),
		Table:        props.String(nodestore.CassandraTableProperty, ""),
	}, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Keyspace == "" {
		cfg.Keyspace = "nodestore"
	}
	if cfg.Table == "" {
		cfg.Table = "nodes"
	}
	if cfg.Consistency == gocql.Any {
		// Defaults to LocalQuorum consistency. You should set it to an appropriate level.
		cfg.Consistency = gocql.LocalQuorum
	}
	if cfg.ReplicationClause == "" {
		cfg.ReplicationClause = "{'class':'SimpleStrategy', 'replication_factor':1}"
	}
}

// Connection owns a Cassandra session opened for its Config.
type Connection struct {
	Session *gocql.Session
	Config
}

// newCluster builds the cluster configuration of cfg. Defaults must already be applied.
func newCluster(cfg Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ClusterHosts...)
	cluster.Consistency = cfg.Consistency
	if cfg.ConnectionTimeout > 0 {
		cluster.ConnectTimeout = cfg.ConnectionTimeout
		cluster.Timeout = cfg.ConnectionTimeout
	}
	if cfg.Authenticator != nil {
		cluster.Authenticator = cfg.Authenticator
	}
	return cluster
}

// OpenConnection opens a session for cfg and makes sure the keyspace and node table exist.
// The Connection must be closed.
func OpenConnection(cfg Config) (*Connection, error) {
	cfg.applyDefaults()
	log.Info("Opening Cassandra connection", "hosts", cfg.ClusterHosts, "keyspace", cfg.Keyspace)
	s, err := newCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}
	if err := initSchema(s, cfg); err != nil {
		s.Close()
		return nil, err
	}
	return &Connection{
		Session: s,
		Config:  cfg,
	}, nil
}

func initSchema(s *gocql.Session, cfg Config) error {
	if err := s.Query(fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = %s;", cfg.Keyspace, cfg.ReplicationClause)).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace %s: %w", cfg.Keyspace, err)
	}
	if err := s.Query(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (id UUID PRIMARY KEY, node blob);", cfg.Keyspace, cfg.Table)).Exec(); err != nil {
		return fmt.Errorf("failed to create %s table: %w", cfg.Table, err)
	}
	return nil
}

// Close closes the session. Calling it again is a no-op.
func (c *Connection) Close() {
	if c == nil || c.Session == nil {
		return
	}
	log.Info("Closing Cassandra connection", "hosts", c.ClusterHosts)
	c.Session.Close()
	c.Session = nil
}
