package store

// The engine never touches per-user personal state (the storefront's
// own cart/wishlist, remembered identity, last seen snapshot).  That
// state lives behind the narrow LocalState interface below and is
// injected into whatever needs it, so the collaborative core has no
// ambient dependency on it.

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LocalState is a small key-value scratch space scoped to one client.
// Get reports ok=false for missing keys; Clear wipes the whole scope.
type LocalState interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

// MemoryLocalState is the in-process implementation, used by the sync
// loop client and in tests.
type MemoryLocalState struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryLocalState() *MemoryLocalState {
	return &MemoryLocalState{values: make(map[string]string)}
}

func (m *MemoryLocalState) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryLocalState) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryLocalState) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}

// RedisLocalState keys a client's scratch space by an owner id so the
// same identity survives process restarts.  Entries expire after the
// given ttl (zero keeps them forever).
type RedisLocalState struct {
	rdb   *redis.Client
	owner string
	ttl   time.Duration
}

func NewRedisLocalState(rdb *redis.Client, owner string, ttl time.Duration) *RedisLocalState {
	return &RedisLocalState{rdb: rdb, owner: owner, ttl: ttl}
}

func (r *RedisLocalState) key(k string) string {
	return "collab:local:" + r.owner + ":" + k
}

func (r *RedisLocalState) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisLocalState) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.key(key), value, r.ttl).Err()
}

func (r *RedisLocalState) Clear(ctx context.Context) error {
	prefix := "collab:local:" + r.owner + ":"
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
