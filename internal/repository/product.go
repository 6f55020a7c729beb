package repository

import (
	"context"

	"productapi/internal/model"
)

// ProductRepository defines data access for products using SQL queries only.
// No business logic here — strictly persistence operations.
type ProductRepository interface {
	// ListAll returns every stored product, unordered collection semantics.
	// Callers get an empty (non-nil) slice when no rows exist.
	ListAll(ctx context.Context) ([]model.Product, error)

	// FindByID returns a product by its ID. A missing row surfaces as
	// sql.ErrNoRows; translating that into a domain error is the caller's job.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// Save persists the product with upsert semantics: a zero ID selects an
	// insert (the database assigns the identifier), a non-zero ID selects an
	// update of that row. Returns the stored representation.
	Save(ctx context.Context, p *model.Product) (*model.Product, error)

	// Delete removes a product by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}
