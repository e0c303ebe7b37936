// Package store holds the authoritative keyed state for all active
// sessions.  Coordination between clients happens entirely through
// this layer: every mutation is an atomic read-modify-write of one
// whole session, and every read hands back a detached snapshot.
// Sessions are independent of each other, so no cross-session
// locking exists anywhere in the package.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/collab-shopping/internal/model"
)

// ErrSessionNotFound is returned when no live session matches a join
// code.  Handlers should translate this into an HTTP 404 response.
var ErrSessionNotFound = errors.New("session not found")

// ErrCodeTaken is returned by Create when the join code is already in
// use by a live session.  The caller regenerates a code and retries.
var ErrCodeTaken = errors.New("join code already in use")

// ErrItemNotFound is returned from an update closure when the cart
// item id does not exist in the session.
var ErrItemNotFound = errors.New("cart item not found")

// ErrForbidden is returned from an update closure when a participant
// attempts an operation reserved for the item's adder or the host.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// Store is the session store contract.  Join codes are case-normalized
// keys: implementations upper-case them so lookups match however the
// client typed the code.
//
// Update applies fn to a private copy of the session and publishes the
// result wholesale when fn returns nil; it is atomic with respect to
// the session, so concurrent votes by different users are both
// retained and concurrent votes by the same user collapse to the last
// applied.  When fn returns an error the session is left untouched and
// the error is passed through.
type Store interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, code string) (*model.Session, error)
	Update(ctx context.Context, code string, fn func(*model.Session) error) (*model.Session, error)
	Delete(ctx context.Context, code string) error
	Codes(ctx context.Context) ([]string, error)
}
