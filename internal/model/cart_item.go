package model

import "time"

// Vote is one participant's opinion on a cart item.  Value is +1 or -1;
// "no vote" is the absence of an entry, a zero value is never stored.
type Vote struct {
	User  string `json:"user"`  // voter identity
	Value int    `json:"value"` // +1 or -1
}

// CartItem is one shared-cart entry.  Items keep their insertion order
// within the session and carry at most one vote per participant.
//
// Fields:
//  ID      – unique within the session, monotonic.
//  Product – denormalized catalog snapshot.
//  AddedBy – participant who added the item.
//  Size, Color, Notes – optional selection metadata.
//  Votes   – at most one entry per voter; re-voting overwrites.
//  AddedAt – append time in UTC.
type CartItem struct {
	ID      uint64    `json:"id"`
	Product Product   `json:"product"`
	AddedBy string    `json:"addedBy"`
	Size    string    `json:"size,omitempty"`
	Color   string    `json:"color,omitempty"`
	Notes   string    `json:"notes,omitempty"`
	Votes   []Vote    `json:"votes"`
	AddedAt time.Time `json:"addedAt"`
}

// SetVote records or replaces the voter's vote on this item.  There is
// never more than one Vote per voter: an existing entry is overwritten
// in place so the votes slice keeps first-vote order.
func (i *CartItem) SetVote(user string, value int) {
	for idx := range i.Votes {
		if i.Votes[idx].User == user {
			i.Votes[idx].Value = value
			return
		}
	}
	i.Votes = append(i.Votes, Vote{User: user, Value: value})
}

// Score returns the aggregate vote score, the sum of all vote values.
func (i *CartItem) Score() int {
	total := 0
	for _, v := range i.Votes {
		total += v.Value
	}
	return total
}
