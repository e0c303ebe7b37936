package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/collab-shopping/internal/client"
	"github.com/iliyamo/collab-shopping/internal/handler"
	"github.com/iliyamo/collab-shopping/internal/middleware"
	"github.com/iliyamo/collab-shopping/internal/model"
	"github.com/iliyamo/collab-shopping/internal/router"
	"github.com/iliyamo/collab-shopping/internal/store"
)

const testSecret = "test-secret"

// newTestServer runs the real dispatch surface over httptest, backed by
// a memory store.
func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	m := store.NewMemoryStore(0)
	h := handler.NewCollabHandler(m, nil, nil, testSecret, time.Hour)

	e := echo.New()
	e.Use(middleware.ParticipantIdentity(testSecret))
	router.RegisterCollab(e, h)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, m
}

func TestClientCreateJoinFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	host := client.New(srv.URL)
	s, err := host.Create(ctx, "Weekend Spree", "Asha")
	require.NoError(t, err)
	require.Len(t, s.Code, 6)
	assert.NotEmpty(t, host.Token())

	guest := client.New(srv.URL)
	s, err = guest.Join(ctx, s.Code, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Ravi"}, s.Participants)
	assert.NotEmpty(t, guest.Token())
}

func TestClientJoinUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := client.New(srv.URL).Join(context.Background(), "ZZZZZZ", "Ravi")
	assert.ErrorIs(t, err, client.ErrSessionNotFound)
}

func TestClientTokenAttribution(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	host := client.New(srv.URL)
	s, err := host.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)

	s, err = host.AddItemSnapshot(ctx, s.Code, model.Product{Title: "Sneakers", PriceCents: 999}, "Asha", "", "", "")
	require.NoError(t, err)
	require.Len(t, s.Items, 1)

	// Empty userName: the participant token carries the voter identity.
	s, err = host.Vote(ctx, s.Code, s.Items[0].ID, 1, "")
	require.NoError(t, err)
	require.Len(t, s.Items[0].Votes, 1)
	assert.Equal(t, "Asha", s.Items[0].Votes[0].User)
}

func TestClientAPIError(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	s, err := c.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)

	_, err = c.Vote(ctx, s.Code, 999, 1, "Asha")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "cart item not found", apiErr.Message)
}

func TestSyncLoopOptimisticVote(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	s, err := c.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)
	s, err = c.AddItemSnapshot(ctx, s.Code, model.Product{Title: "Sneakers", PriceCents: 999}, "Asha", "", "", "")
	require.NoError(t, err)
	itemID := s.Items[0].ID

	loop := client.NewSyncLoop(c, s.Code, time.Second, store.NewMemoryLocalState())
	require.NoError(t, loop.Refresh(ctx))

	require.NoError(t, loop.Vote(ctx, itemID, "Asha", 1))

	// After the round trip the pending and confirmed views agree.
	view := loop.View()
	require.NotNil(t, view)
	require.Len(t, view.Items[0].Votes, 1)
	assert.Equal(t, 1, view.Items[0].Score())
	assert.Equal(t, view.Items[0].Score(), loop.Confirmed().Items[0].Score())
}

func TestSyncLoopFailedMutationHealedByRefresh(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	s, err := c.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)
	s, err = c.AddItemSnapshot(ctx, s.Code, model.Product{Title: "Sneakers", PriceCents: 999}, "Asha", "", "", "")
	require.NoError(t, err)
	realID := s.Items[0].ID

	loop := client.NewSyncLoop(c, s.Code, time.Second, nil)
	require.NoError(t, loop.Refresh(ctx))

	// Voting on an id the server does not know fails, leaving the
	// optimistic view diverged from the confirmed one.
	err = loop.Vote(ctx, realID, "Asha", 1)
	require.NoError(t, err)
	err = loop.SendMessage(ctx, "", "")
	require.Error(t, err)

	diverged := loop.View()
	confirmed := loop.Confirmed()
	assert.NotEqual(t, len(diverged.Messages), len(confirmed.Messages))

	// The next successful poll pulls the view back to server truth.
	require.NoError(t, loop.Refresh(ctx))
	assert.Len(t, loop.View().Messages, len(loop.Confirmed().Messages))
}

func TestSyncLoopPersistAndRestore(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	s, err := c.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)

	local := store.NewMemoryLocalState()
	loop := client.NewSyncLoop(c, s.Code, time.Second, local)
	require.NoError(t, loop.Refresh(ctx))

	// A fresh loop over the same local state can show the last snapshot
	// before it ever polls.
	restarted := client.NewSyncLoop(c, s.Code, time.Second, local)
	require.True(t, restarted.Restore(ctx))
	view := restarted.View()
	require.NotNil(t, view)
	assert.Equal(t, s.Code, view.Code)
}

func TestSyncLoopRunPollsUntilCancelled(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(srv.URL)
	s, err := c.Create(ctx, "Spree", "Asha")
	require.NoError(t, err)

	updates := make(chan *model.Session, 16)
	loop := client.NewSyncLoop(c, s.Code, 20*time.Millisecond, nil)
	loop.OnUpdate = func(snap *model.Session) {
		select {
		case updates <- snap:
		default:
		}
	}

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// Another participant acts; the poll must pick it up.
	_, err = client.New(srv.URL).Join(ctx, s.Code, "Ravi")
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-updates:
			if len(snap.Participants) == 2 {
				cancel()
				assert.ErrorIs(t, <-done, context.Canceled)
				return
			}
		case <-deadline:
			t.Fatal("poll never observed the new participant")
		}
	}
}
