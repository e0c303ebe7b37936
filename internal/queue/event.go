// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionActivityEvent is published after every successful mutation of a
// session (create, join, addItem, removeItem, vote, sendMessage, react).
// It carries enough information for downstream consumers to log or feed
// analytics without re-reading the session store.  Publishing is
// fire-and-forget: a broker failure never fails the originating request.
type SessionActivityEvent struct {
	SessionCode  string `json:"session_code"`
	SessionName  string `json:"session_name"`
	Action       string `json:"action"`
	Actor        string `json:"actor"`
	ItemID       uint64 `json:"item_id,omitempty"`
	ItemTitle    string `json:"item_title,omitempty"`
	VoteValue    int    `json:"vote_value,omitempty"`
	Participants int    `json:"participants"`
	OccurredAt   string `json:"occurred_at"`
}
