// Package repository is the data access layer for the product catalog.
// The catalog is an external collaborator from the engine's point of
// view: the collaborative core only ever reads product snapshots from
// it, and only when an addItem request carries a bare product id
// instead of denormalized product data.
package repository

import "errors"

// ErrProductNotFound is returned when no product matches the requested
// id. Handlers should translate this into an HTTP 404 response.
var ErrProductNotFound = errors.New("product not found")
