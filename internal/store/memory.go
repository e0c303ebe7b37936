package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/collab-shopping/internal/model"
)

// MemoryStore keeps all sessions in a mutex-guarded map.  It is the
// default store for single-process deployments.  Reads return deep
// copies so callers can never mutate authoritative state outside
// Update.  A janitor goroutine evicts sessions idle past the
// configured TTL (sliding expiry: any applied update or read renews
// the clock).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore builds a MemoryStore.  A non-positive ttl disables
// eviction entirely and no janitor is started.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go m.janitor()
	}
	return m
}

// janitor sweeps idle sessions once a minute.
func (m *MemoryStore) janitor() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Sweep evicts every session idle past the TTL and returns how many
// were removed.  The janitor calls it periodically; tests call it
// directly.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-m.ttl)
	evicted := 0
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, code)
			evicted++
		}
	}
	return evicted
}

// Close stops the janitor.  Stored sessions remain readable.
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryStore) Create(ctx context.Context, s *model.Session) error {
	code := strings.ToUpper(s.Code)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[code]; exists {
		return ErrCodeTaken
	}
	m.sessions[code] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, code string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[strings.ToUpper(code)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Reads renew the sliding window too, so an actively polled session
	// stays alive even when nobody mutates it.
	s.Touch()
	return s.Clone(), nil
}

// Update runs fn on a copy under the write lock and swaps the copy in
// when fn succeeds.  The returned snapshot is detached from the store.
func (m *MemoryStore) Update(ctx context.Context, code string, fn func(*model.Session) error) (*model.Session, error) {
	key := strings.ToUpper(code)
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Touch()
	m.sessions[key] = next
	return next.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, code string) error {
	key := strings.ToUpper(code)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) Codes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]string, 0, len(m.sessions))
	for code := range m.sessions {
		codes = append(codes, code)
	}
	return codes, nil
}
