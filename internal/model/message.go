package model

import "time"

// Message types distinguish user chat from client quick-reactions and
// from entries the engine appends itself (created/joined announcements).
const (
	MessageTypeChat     = "chat"
	MessageTypeReaction = "reaction"
	MessageTypeSystem   = "system"
)

// Message is one entry in a session's append-only chat log.  Entries
// are never edited, reordered or deleted once appended; the id is
// monotonic within the session.
//
// Fields:
//  ID        – per-session monotonic identifier.
//  UserName  – author of the entry.
//  Message   – text body, or the emoji for reactions.
//  Timestamp – append time in UTC.
//  Type      – one of chat, reaction, system.
type Message struct {
	ID        uint64    `json:"id"`
	UserName  string    `json:"userName"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}
