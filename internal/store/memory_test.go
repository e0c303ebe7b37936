package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collab-shopping/internal/model"
	"github.com/iliyamo/collab-shopping/internal/store"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	got, err := m.Get(ctx, "ab12cd") // lookups are case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", got.Code)
	assert.Equal(t, "Asha", got.HostID)
}

func TestMemoryStoreCodeTaken(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "First", "Asha")))
	err := m.Create(ctx, model.NewSession("ab12cd", "Second", "Ravi"))
	assert.ErrorIs(t, err, store.ErrCodeTaken)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	m := store.NewMemoryStore(0)

	_, err := m.Get(context.Background(), "ZZZZZZ")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	snap, err := m.Update(ctx, "AB12CD", func(s *model.Session) error {
		s.Join("Ravi")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Ravi"}, snap.Participants)

	got, err := m.Get(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Ravi"}, got.Participants)
}

func TestMemoryStoreUpdateErrorLeavesStateUntouched(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	_, err := m.Update(ctx, "AB12CD", func(s *model.Session) error {
		s.Join("Ravi")
		return store.ErrItemNotFound
	})
	require.ErrorIs(t, err, store.ErrItemNotFound)

	got, err := m.Get(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha"}, got.Participants)
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	snap, err := m.Get(ctx, "AB12CD")
	require.NoError(t, err)
	snap.Join("Mallory")

	got, err := m.Get(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha"}, got.Participants)
}

func TestMemoryStoreConcurrentVotes(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()

	s := model.NewSession("AB12CD", "Spree", "Asha")
	item := s.AddItem(model.Product{Title: "Sneakers"}, "Asha", "", "", "")
	require.NoError(t, m.Create(ctx, s))

	voters := []string{"Asha", "Ravi", "Mei", "Tom", "Asha", "Ravi"}
	var wg sync.WaitGroup
	for _, name := range voters {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := m.Update(ctx, "AB12CD", func(s *model.Session) error {
				it := s.Item(item.ID)
				if it == nil {
					return store.ErrItemNotFound
				}
				it.SetVote(name, 1)
				return nil
			})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	got, err := m.Get(ctx, "AB12CD")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	// Four distinct voters, duplicates collapsed.
	assert.Len(t, got.Items[0].Votes, 4)
	assert.Equal(t, 4, got.Items[0].Score())
}

func TestMemoryStoreDelete(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	require.NoError(t, m.Delete(ctx, "AB12CD"))
	_, err := m.Get(ctx, "AB12CD")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	assert.ErrorIs(t, m.Delete(ctx, "AB12CD"), store.ErrSessionNotFound)
}

func TestMemoryStoreSweep(t *testing.T) {
	m := store.NewMemoryStore(50 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, model.NewSession("STALE1", "Old", "Asha")))
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, m.Create(ctx, model.NewSession("FRESH1", "New", "Ravi")))

	assert.Equal(t, 1, m.Sweep())
	_, err := m.Get(ctx, "STALE1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	_, err = m.Get(ctx, "FRESH1")
	assert.NoError(t, err)
}

func TestMemoryStoreSweepSlidingExpiry(t *testing.T) {
	m := store.NewMemoryStore(60 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))
	time.Sleep(40 * time.Millisecond)

	// Activity renews the clock so the sweep must spare the session.
	_, err := m.Update(ctx, "AB12CD", func(s *model.Session) error {
		s.AppendMessage("Asha", "still here", model.MessageTypeChat)
		return nil
	})
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, 0, m.Sweep())
}

func TestMemoryStoreSweepSparesPolledSession(t *testing.T) {
	m := store.NewMemoryStore(60 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "Spree", "Asha")))

	// A client that only polls, never mutates, must still hold the
	// session open: reads renew the sliding window like updates do.
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		_, err := m.Get(ctx, "AB12CD")
		require.NoError(t, err)
	}

	assert.Equal(t, 0, m.Sweep())
	_, err := m.Get(ctx, "AB12CD")
	assert.NoError(t, err)
}

func TestMemoryStoreCodes(t *testing.T) {
	m := store.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, model.NewSession("AB12CD", "A", "Asha")))
	require.NoError(t, m.Create(ctx, model.NewSession("EF34GH", "B", "Ravi")))

	codes, err := m.Codes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AB12CD", "EF34GH"}, codes)
}
