package nodestore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Property keys recognized by the storage constructors.
const (
	// StorageTypeProperty selects the backend, see ParseKind.
	StorageTypeProperty = "nodestore.storage.type"

	DataFileProperty  = "nodestore.disk.data_file"
	IndexFileProperty = "nodestore.disk.index_file"
	PageSizeProperty  = "nodestore.disk.page_size"
	DirectIOProperty  = "nodestore.disk.direct_io"

	IndexErasureDataShardsProperty   = "nodestore.disk.index_erasure.data_shards"
	IndexErasureParityShardsProperty = "nodestore.disk.index_erasure.parity_shards"
	IndexErasureFoldersProperty      = "nodestore.disk.index_erasure.folders"

	BufferSizeProperty = "nodestore.buffered.buffer_size"

	RedisAddressProperty  = "nodestore.redis.address"
	RedisPasswordProperty = "nodestore.redis.password"
	RedisDBProperty       = "nodestore.redis.db"
	RedisPrefixProperty   = "nodestore.redis.prefix"
	RedisTTLProperty      = "nodestore.redis.ttl"

	CassandraHostsProperty    = "nodestore.cassandra.hosts"
	CassandraKeyspaceProperty = "nodestore.cassandra.keyspace"
	CassandraTableProperty    = "nodestore.cassandra.table"

	S3EndpointProperty = "nodestore.s3.endpoint"
	S3RegionProperty   = "nodestore.s3.region"
	S3BucketProperty   = "nodestore.s3.bucket"
	S3PrefixProperty   = "nodestore.s3.prefix"
	S3UsernameProperty = "nodestore.s3.username"
	S3PasswordProperty = "nodestore.s3.password"
)

// Properties is the construction time configuration bag handed to the storage factory.
type Properties map[string]string

// String returns the trimmed value of key, or def when absent or blank.
func (p Properties) String(key, def string) string {
	if v, ok := p[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// Has reports whether key carries a non blank value.
func (p Properties) Has(key string) bool {
	return p.String(key, "") != ""
}

// Require returns the value of key or a ConfigurationError when it is absent.
func (p Properties) Require(key string) (string, error) {
	v := p.String(key, "")
	if v == "" {
		return "", Error{Code: ConfigurationError, Err: fmt.Errorf("%s: %w", key, ErrMissingProperty), UserData: key}
	}
	return v, nil
}

// Int parses key as an integer, returning def when absent.
func (p Properties) Int(key string, def int) (int, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, Error{Code: ConfigurationError, Err: fmt.Errorf("%s: %w", key, err), UserData: v}
	}
	return i, nil
}

// Bool parses key as a boolean, returning def when absent.
func (p Properties) Bool(key string, def bool) (bool, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, Error{Code: ConfigurationError, Err: fmt.Errorf("%s: %w", key, err), UserData: v}
	}
	return b, nil
}

// Duration parses key with time.ParseDuration, returning def when absent.
func (p Properties) Duration(key string, def time.Duration) (time.Duration, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, Error{Code: ConfigurationError, Err: fmt.Errorf("%s: %w", key, err), UserData: v}
	}
	return d, nil
}

// List splits a comma separated value, dropping blank items.
func (p Properties) List(key string) []string {
	v := p.String(key, "")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	r := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			r = append(r, s)
		}
	}
	return r
}

// KnownProperties lists every property key the built-in constructors read.
var KnownProperties = []string{
	StorageTypeProperty,
	DataFileProperty, IndexFileProperty, PageSizeProperty, DirectIOProperty,
	IndexErasureDataShardsProperty, IndexErasureParityShardsProperty, IndexErasureFoldersProperty,
	BufferSizeProperty,
	RedisAddressProperty, RedisPasswordProperty, RedisDBProperty, RedisPrefixProperty, RedisTTLProperty,
	CassandraHostsProperty, CassandraKeyspaceProperty, CassandraTableProperty,
	S3EndpointProperty, S3RegionProperty, S3BucketProperty, S3PrefixProperty, S3UsernameProperty, S3PasswordProperty,
}

// EnvName maps a property key to its environment variable, e.g. nodestore.disk.page_size
// to NODESTORE_DISK_PAGE_SIZE.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// PropertiesFromEnv collects the KnownProperties set in the environment. lookup is usually os.LookupEnv.
func PropertiesFromEnv(lookup func(string) (string, bool)) Properties {
	p := Properties{}
	for _, key := range KnownProperties {
		if v, ok := lookup(EnvName(key)); ok {
			p[key] = v
		}
	}
	return p
}
