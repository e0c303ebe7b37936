package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/iliyamo/collab-shopping/internal/model"
	"github.com/iliyamo/collab-shopping/internal/store"
)

// localSnapshotKey is where the sync loop persists the last confirmed
// snapshot in the injected local state, so a restarted client can show
// something before its first poll completes.
const localSnapshotKey = "last_snapshot"

// SyncLoop reconciles a local session view against server snapshots.
// The model is two views and no merging:
//
//   pendingLocalView    is what the UI shows; mutated optimistically
//                       the moment the user acts.
//   confirmedServerView is the last snapshot the server returned.
//
// Every server response (mutation result or poll) replaces both views
// wholesale: last snapshot wins, always.  If a mutation request fails,
// the pending view stays diverged until the next successful poll pulls
// it back.
type SyncLoop struct {
	client   *Client
	code     string
	interval time.Duration
	local    store.LocalState // injected; never touched by the server side

	mu        sync.RWMutex
	pending   *model.Session
	confirmed *model.Session

	// OnUpdate, when set, is called with the fresh snapshot after every
	// reconciliation.  Called from the loop goroutine.
	OnUpdate func(*model.Session)
}

// NewSyncLoop wires a sync loop for one session.  interval is the
// polling period; local may be nil when persistence is not wanted.
func NewSyncLoop(c *Client, code string, interval time.Duration, local store.LocalState) *SyncLoop {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &SyncLoop{client: c, code: code, interval: interval, local: local}
}

// View returns the current local view (the pending one).  The returned
// snapshot is detached and safe to read from any goroutine.
func (l *SyncLoop) View() *model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.pending == nil {
		return nil
	}
	return l.pending.Clone()
}

// Confirmed returns the last server-confirmed snapshot.
func (l *SyncLoop) Confirmed() *model.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.confirmed == nil {
		return nil
	}
	return l.confirmed.Clone()
}

// accept installs a server snapshot as the new truth, wholesale.
func (l *SyncLoop) accept(snap *model.Session) {
	l.mu.Lock()
	l.confirmed = snap
	l.pending = snap.Clone()
	l.mu.Unlock()

	if l.local != nil {
		if body, err := json.Marshal(snap); err == nil {
			_ = l.local.Set(context.Background(), localSnapshotKey, string(body))
		}
	}
	if l.OnUpdate != nil {
		l.OnUpdate(snap)
	}
}

// Restore loads the last persisted snapshot into the local view, for
// display before the first poll.  It never contacts the server.
func (l *SyncLoop) Restore(ctx context.Context) bool {
	if l.local == nil {
		return false
	}
	body, ok, err := l.local.Get(ctx, localSnapshotKey)
	if err != nil || !ok {
		return false
	}
	var s model.Session
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return false
	}
	l.mu.Lock()
	l.pending = &s
	l.mu.Unlock()
	return true
}

// Refresh pulls a snapshot immediately and reconciles.  This is the
// manual refresh action; the periodic loop calls the same path.
func (l *SyncLoop) Refresh(ctx context.Context) error {
	snap, err := l.client.Refresh(ctx, l.code)
	if err != nil {
		return err
	}
	l.accept(snap)
	return nil
}

// Run polls until the context is cancelled.  The initial fetch happens
// immediately; poll failures are transient and the loop keeps going.
// The user-facing retry affordance is the manual Refresh.
func (l *SyncLoop) Run(ctx context.Context) error {
	if err := l.Refresh(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = l.Refresh(ctx)
		}
	}
}

// Mutate applies an optimistic edit to the pending view, then issues
// the server call; a successful response replaces both views.  On
// failure the optimistic edit stays visible and diverged until the
// next successful refresh, and the error is returned for an inline
// retry affordance.
func (l *SyncLoop) Mutate(ctx context.Context, optimistic func(*model.Session), call func(context.Context) (*model.Session, error)) error {
	l.mu.Lock()
	if l.pending != nil && optimistic != nil {
		optimistic(l.pending)
	}
	l.mu.Unlock()

	snap, err := call(ctx)
	if err != nil {
		return err
	}
	l.accept(snap)
	return nil
}

// Vote is the optimistic vote path: the local view flips immediately,
// the server result is authoritative.
func (l *SyncLoop) Vote(ctx context.Context, itemID uint64, voter string, value int) error {
	return l.Mutate(ctx,
		func(s *model.Session) {
			if item := s.Item(itemID); item != nil {
				item.SetVote(voter, value)
			}
		},
		func(ctx context.Context) (*model.Session, error) {
			return l.client.Vote(ctx, l.code, itemID, value, voter)
		},
	)
}

// SendMessage optimistically appends the chat entry locally while the
// request is in flight.
func (l *SyncLoop) SendMessage(ctx context.Context, userName, text string) error {
	return l.Mutate(ctx,
		func(s *model.Session) { s.AppendMessage(userName, text, model.MessageTypeChat) },
		func(ctx context.Context) (*model.Session, error) {
			return l.client.SendMessage(ctx, l.code, userName, text)
		},
	)
}

// React appends a durable reaction.  Reactions live in the shared log
// like chat, so everyone sees them on the next poll.
func (l *SyncLoop) React(ctx context.Context, userName, emoji string) error {
	return l.Mutate(ctx,
		func(s *model.Session) { s.AppendMessage(userName, emoji, model.MessageTypeReaction) },
		func(ctx context.Context) (*model.Session, error) {
			return l.client.React(ctx, l.code, userName, emoji)
		},
	)
}
