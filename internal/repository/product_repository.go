package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/collab-shopping/internal/model"
)

// ProductRepo provides read access to the products table.  The
// collaborative engine consumes it through the handler.Catalog
// interface; nothing in this repository mutates catalog data.
// Image URLs are stored as a JSON array in the images column.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying handle for callers that manage transactions.
func (r *ProductRepo) DB() *sql.DB { return r.db }

// GetByID returns a product snapshot by id.  When no product with the
// given id exists, ErrProductNotFound is returned.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	const q = `SELECT id, title, price_cents, images, brand FROM products WHERE id = ?`
	var p model.Product
	var images sql.NullString
	var brand sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &p.PriceCents, &images, &brand)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if images.Valid && images.String != "" {
		// Images are a JSON array of URLs; a malformed column leaves the
		// slice empty rather than failing the lookup.
		_ = json.Unmarshal([]byte(images.String), &p.Images)
	}
	if brand.Valid {
		p.Brand = brand.String
	}
	return &p, nil
}

// List returns a page of catalog products ordered by id.  It backs the
// public browse endpoint; limit is clamped to a sane maximum.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT id, title, price_cents, images, brand FROM products ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0, limit)
	for rows.Next() {
		var p model.Product
		var images sql.NullString
		var brand sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.PriceCents, &images, &brand); err != nil {
			return nil, err
		}
		if images.Valid && images.String != "" {
			_ = json.Unmarshal([]byte(images.String), &p.Images)
		}
		if brand.Valid {
			p.Brand = brand.String
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
