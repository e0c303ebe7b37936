package store

// This file implements the Store contract on Redis so multiple server
// instances can share one session space.  Each session is a single
// JSON document under collab:session:<CODE>.  Atomic updates use the
// WATCH/MULTI optimistic transaction pattern with bounded retries: a
// concurrent writer invalidates the transaction and the read-modify-
// write is replayed against the fresh document.  Expiry is native
// Redis TTL, renewed on every mutation and read (sliding).

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/collab-shopping/internal/model"
)

const sessionKeyPrefix = "collab:session:"

// maxUpdateRetries bounds the optimistic replay loop.  Contention on a
// single session is a handful of participants, so collisions are rare.
const maxUpdateRetries = 8

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore builds a RedisStore.  A non-positive ttl stores
// sessions without expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(code string) string {
	return sessionKeyPrefix + strings.ToUpper(code)
}

func (r *RedisStore) expiration() time.Duration {
	if r.ttl > 0 {
		return r.ttl
	}
	return 0 // zero means no expiry for SET
}

func (r *RedisStore) Create(ctx context.Context, s *model.Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(s.Code), body, r.expiration()).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeTaken
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, code string) (*model.Session, error) {
	body, err := r.rdb.Get(ctx, sessionKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, err
	}
	// Refresh the sliding window on read so actively polled sessions stay alive.
	if r.ttl > 0 {
		_ = r.rdb.Expire(ctx, sessionKey(code), r.ttl).Err()
	}
	return &s, nil
}

// Update replays the closure under WATCH until the write lands or the
// retry budget runs out.  fn errors abort without writing.
func (r *RedisStore) Update(ctx context.Context, code string, fn func(*model.Session) error) (*model.Session, error) {
	key := sessionKey(code)
	var updated *model.Session

	txf := func(tx *redis.Tx) error {
		body, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var s model.Session
		if err := json.Unmarshal(body, &s); err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
		s.Touch()
		next, err := json.Marshal(&s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.expiration())
			return nil
		})
		if err != nil {
			return err
		}
		updated = &s
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, replay against fresh state
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, errors.New("session update contention: retries exhausted")
}

func (r *RedisStore) Delete(ctx context.Context, code string) error {
	n, err := r.rdb.Del(ctx, sessionKey(code)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Codes scans the session keyspace.  SCAN is cursor-based so large
// deployments do not block Redis the way KEYS would.
func (r *RedisStore) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := r.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}
