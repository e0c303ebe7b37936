package model

import (
	"sort"
	"time"
)

// Session is one collaborative shopping party.  It is the unit of
// storage and of atomicity: every mutation runs against a whole
// session under the store's update lock, and every service call
// returns the whole session as a snapshot.  Sessions are reachable
// only by their join code.
//
// Fields:
//  Code         – short human-shareable join code, unique among live
//                 sessions, immutable after creation.
//  Name         – display label set at creation.
//  HostID       – identity of the creating participant.
//  Participants – participant identities, deduplicated, in join order.
//  Items        – shared cart entries in add order.
//  Messages     – append-only chat log.
//  CreatedAt    – creation timestamp in UTC.
//  UpdatedAt    – last mutation timestamp; drives idle eviction.
type Session struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	HostID       string     `json:"hostId"`
	Participants []string   `json:"participants"`
	Items        []CartItem `json:"items"`
	Messages     []Message  `json:"messages"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewSession creates a session with the host as its only participant
// and a system message announcing creation.
func NewSession(code, name, hostName string) *Session {
	now := time.Now().UTC()
	s := &Session{
		Code:         code,
		Name:         name,
		HostID:       hostName,
		Participants: []string{hostName},
		Items:        []CartItem{},
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.AppendMessage(hostName, hostName+" started the session", MessageTypeSystem)
	return s
}

// HasParticipant reports whether the identity is already a member.
func (s *Session) HasParticipant(name string) bool {
	for _, p := range s.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Join adds the participant unless already present.  Re-joining is a
// no-op: no duplicate entry, no error, no duplicate system message.
// It returns true when the participant was actually added.
func (s *Session) Join(userName string) bool {
	if s.HasParticipant(userName) {
		return false
	}
	s.Participants = append(s.Participants, userName)
	s.AppendMessage(userName, userName+" joined", MessageTypeSystem)
	return true
}

// nextItemID derives the next item id from the highest one present.
// Item ids therefore never repeat within a session even after removals.
func (s *Session) nextItemID() uint64 {
	var max uint64
	for _, it := range s.Items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

// AddItem appends a shared-cart entry with an empty vote set and
// returns it.  Insertion order is add order.
func (s *Session) AddItem(p Product, addedBy, size, color, notes string) *CartItem {
	item := CartItem{
		ID:      s.nextItemID(),
		Product: p,
		AddedBy: addedBy,
		Size:    size,
		Color:   color,
		Notes:   notes,
		Votes:   []Vote{},
		AddedAt: time.Now().UTC(),
	}
	s.Items = append(s.Items, item)
	return &s.Items[len(s.Items)-1]
}

// Item returns the cart entry with the given id, or nil.
func (s *Session) Item(id uint64) *CartItem {
	for idx := range s.Items {
		if s.Items[idx].ID == id {
			return &s.Items[idx]
		}
	}
	return nil
}

// RemoveItem deletes the entry with the given id, preserving the order
// of the remaining items.  It returns false when the id is unknown.
func (s *Session) RemoveItem(id uint64) bool {
	for idx := range s.Items {
		if s.Items[idx].ID == id {
			s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// AppendMessage appends to the chat log and returns the new entry.
// The id is monotonic; the log length only ever grows.
func (s *Session) AppendMessage(userName, text, msgType string) Message {
	m := Message{
		ID:        uint64(len(s.Messages)) + 1,
		UserName:  userName,
		Message:   text,
		Timestamp: time.Now().UTC(),
		Type:      msgType,
	}
	s.Messages = append(s.Messages, m)
	return m
}

// Leaderboard returns the items ranked by aggregate score descending.
// The sort is stable so items with equal scores keep their insertion
// order.  The receiver's Items slice is not reordered.
func (s *Session) Leaderboard() []CartItem {
	ranked := make([]CartItem, len(s.Items))
	copy(ranked, s.Items)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score() > ranked[b].Score()
	})
	return ranked
}

// Touch bumps the last-mutation timestamp.  Stores call it on every
// applied update so idle eviction works from a single field.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy.  Stores hand copies to callers so a
// snapshot can never alias the authoritative state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Participants = append([]string(nil), s.Participants...)
	cp.Items = make([]CartItem, len(s.Items))
	for i, it := range s.Items {
		cp.Items[i] = it
		cp.Items[i].Votes = append([]Vote(nil), it.Votes...)
		cp.Items[i].Product.Images = append([]string(nil), it.Product.Images...)
	}
	cp.Messages = append([]Message(nil), s.Messages...)
	return &cp
}
