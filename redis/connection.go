package redis

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/nodestore"
)

// Redis configurable options.
type Options struct {
	// Redis server(cluster) address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// TLS config.
	TLSConfig *tls.Config
	// Prefix namespaces the node keys, "<prefix>:<id>".
	Prefix string
	// TTL expires nodes, zero keeps them forever. Useful when the store only caches query results.
	TTL time.Duration
}

// DefaultOptions.
func DefaultOptions() Options {
	return Options{
		Address:  "localhost:6379",
		Password: "", // no password set
		DB:       0,  // use default DB
		Prefix:   "nodes",
	}
}

// OptionsFromProperties reads the redis properties over DefaultOptions.
func OptionsFromProperties(props nodestore.Properties) (Options, error) {
	opts := DefaultOptions()
	opts.Address = props.String(nodestore.RedisAddressProperty, opts.Address)
	opts.Password = props.String(nodestore.RedisPasswordProperty, opts.Password)
	opts.Prefix = props.String(nodestore.RedisPrefixProperty, opts.Prefix)
	var err error
	if opts.DB, err = props.Int(nodestore.RedisDBProperty, opts.DB); err != nil {
		return opts, err
	}
	if opts.TTL, err = props.Duration(nodestore.RedisTTLProperty, 0); err != nil {
		return opts, err
	}
	return opts, nil
}

// Connection contains Redis client connection object and the Options used to connect.
type Connection struct {
	Client  *redis.Client
	Options Options
}

// OpenConnection creates a client for options. Nothing is dialed until the first command.
func OpenConnection(options Options) *Connection {
	client := redis.NewClient(&redis.Options{
		TLSConfig: options.TLSConfig,
		Addr:      options.Address,
		Password:  options.Password,
		DB:        options.DB})

	return &Connection{
		Client:  client,
		Options: options,
	}
}

// Close the connection if open.
func (c *Connection) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	err := c.Client.Close()
	c.Client = nil
	return err
}
