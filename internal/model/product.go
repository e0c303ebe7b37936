package model

// Product is a denormalized snapshot of a catalog record.  Cart items
// embed the snapshot at add time so a session never re-reads the
// catalog; the catalog collaborator is only consulted when a client
// supplies a bare product id instead of the full snapshot.
//
// Fields:
//  ID         – catalog identifier (zero for ad-hoc snapshots).
//  Title      – display title.
//  PriceCents – price in cents.
//  Images     – image URLs, may be empty.
//  Brand      – brand label, may be empty.
type Product struct {
	ID         uint64   `json:"id,omitempty"` // products.id
	Title      string   `json:"title"`        // products.title
	PriceCents uint32   `json:"price"`        // products.price_cents
	Images     []string `json:"images,omitempty"`
	Brand      string   `json:"brand,omitempty"`
}
