package redis

import (
	"context"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedis struct {
	mu     sync.Mutex
	lookup map[string][]byte
}

// Returns a new Redis mock client. TTLs are ignored and Scan returns everything in one page.
func NewMockClient() Client {
	return &mockRedis{
		lookup: make(map[string][]byte),
	}
}

func (m *mockRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	ba, ok := m.lookup[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(ba), nil)
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.lookup[key] = slices.Clone(v)
	case string:
		m.lookup[key] = []byte(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.lookup[k]; ok {
			delete(m.lookup, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.lookup[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.lookup {
		if ok, _ := path.Match(match, k); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return redis.NewScanCmdResult(keys, 0, nil)
}
