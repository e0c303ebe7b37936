// Package client implements the polling client side of the
// collaborative session engine: a thin HTTP wrapper over the /collab
// dispatch surface plus the sync loop that keeps a local view
// reconciled against server snapshots.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iliyamo/collab-shopping/internal/model"
)

// ErrSessionNotFound mirrors the server's 404 for unknown or expired
// join codes.  It is inline-surfaceable: the client process keeps
// running and the user can retype the code.
var ErrSessionNotFound = errors.New("session not found")

// APIError carries a non-2xx server response.  Transient network
// failures come back as plain transport errors instead; callers retry
// those manually (there is no automatic retry loop).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("collab api: %d %s", e.Status, e.Message)
}

// Client is a stateless-ish HTTP wrapper over the dispatch endpoint.
// It remembers the participant token the server issues on create/join
// and presents it on every later call for attribution.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New builds a Client against the given base URL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns the participant token captured from the last
// create/join response, or "".
func (c *Client) Token() string { return c.token }

// do posts an action payload and decodes either a session snapshot or
// an error body.
func (c *Client) do(ctx context.Context, payload map[string]any) (*model.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/collab", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err // transient network error; caller may retry
	}
	defer resp.Body.Close()

	if tok := resp.Header.Get("X-Participant-Token"); tok != "" {
		c.token = tok
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var s model.Session
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if resp.StatusCode == http.StatusNotFound && apiErr.Error == "session not found" {
		return nil, ErrSessionNotFound
	}
	return nil, &APIError{Status: resp.StatusCode, Message: apiErr.Error}
}

// Create starts a new session and returns its first snapshot.
func (c *Client) Create(ctx context.Context, name, hostName string) (*model.Session, error) {
	return c.do(ctx, map[string]any{"action": "create", "name": name, "hostName": hostName})
}

// Join enters an existing session by code.  Joining twice with the
// same name is a no-op server-side.
func (c *Client) Join(ctx context.Context, code, userName string) (*model.Session, error) {
	return c.do(ctx, map[string]any{"action": "join", "code": code, "userName": userName})
}

// AddItemSnapshot adds an item from denormalized product data.
func (c *Client) AddItemSnapshot(ctx context.Context, code string, p model.Product, addedBy, size, color, notes string) (*model.Session, error) {
	return c.do(ctx, map[string]any{
		"action": "addItem", "code": code, "productData": p,
		"addedBy": addedBy, "size": size, "color": color, "notes": notes,
	})
}

// AddItemByID adds an item resolved from the server-side catalog.
func (c *Client) AddItemByID(ctx context.Context, code string, productID uint64, addedBy string) (*model.Session, error) {
	return c.do(ctx, map[string]any{
		"action": "addItem", "code": code, "productId": productID, "addedBy": addedBy,
	})
}

// RemoveItem removes a cart item.  The server enforces that only the
// adder or the host may do this.
func (c *Client) RemoveItem(ctx context.Context, code string, itemID uint64, userName string) (*model.Session, error) {
	return c.do(ctx, map[string]any{
		"action": "removeItem", "code": code, "itemId": itemID, "userName": userName,
	})
}

// Vote casts or changes a +1/-1 vote.  The voter is attributed from
// the participant token when userName is empty.
func (c *Client) Vote(ctx context.Context, code string, itemID uint64, value int, userName string) (*model.Session, error) {
	payload := map[string]any{"action": "vote", "code": code, "itemId": itemID, "value": value}
	if userName != "" {
		payload["userName"] = userName
	}
	return c.do(ctx, payload)
}

// SendMessage appends a chat message.
func (c *Client) SendMessage(ctx context.Context, code, userName, text string) (*model.Session, error) {
	return c.do(ctx, map[string]any{
		"action": "sendMessage", "code": code, "userName": userName, "message": text,
	})
}

// React appends a durable reaction entry to the shared log.
func (c *Client) React(ctx context.Context, code, userName, emoji string) (*model.Session, error) {
	return c.do(ctx, map[string]any{
		"action": "react", "code": code, "userName": userName, "message": emoji,
	})
}

// Refresh pulls the current snapshot without mutating anything.
func (c *Client) Refresh(ctx context.Context, code string) (*model.Session, error) {
	return c.do(ctx, map[string]any{"action": "refresh", "code": code})
}
