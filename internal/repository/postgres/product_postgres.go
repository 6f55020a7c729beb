package postgres

import (
	"context"
	"database/sql"

	"productapi/internal/model"
	"productapi/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

// productRow mirrors the nullable columns; name and price carry no schema
// constraints, so NULLs map to Go zero values.
type productRow struct {
	id        int64
	name      sql.NullString
	price     sql.NullFloat64
	imagePath sql.NullString
}

func (r productRow) toModel() model.Product {
	return model.Product{
		ID:        r.id,
		Name:      r.name.String,
		Price:     r.price.Float64,
		ImagePath: r.imagePath.String,
	}
}

func nullableImagePath(p *model.Product) sql.NullString {
	return sql.NullString{String: p.ImagePath, Valid: p.ImagePath != ""}
}

// ListAll fetches every product row.
func (r *ProductPostgres) ListAll(ctx context.Context) ([]model.Product, error) {
	const q = `
		SELECT id, name, price, image_path
		FROM products
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		var row productRow
		if err := rows.Scan(&row.id, &row.name, &row.price, &row.imagePath); err != nil {
			return nil, err
		}
		items = append(items, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a single product by its ID.
func (r *ProductPostgres) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	const q = `
		SELECT id, name, price, image_path
		FROM products
		WHERE id = $1
	`
	var row productRow
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&row.id, &row.name, &row.price, &row.imagePath); err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

// Save upserts a product: insert when the ID is zero, update-by-id otherwise.
// The presence of a primary-key value selects update over insert.
func (r *ProductPostgres) Save(ctx context.Context, p *model.Product) (*model.Product, error) {
	if p.ID == 0 {
		return r.insert(ctx, p)
	}
	return r.update(ctx, p)
}

func (r *ProductPostgres) insert(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO products (name, price, image_path)
		VALUES ($1, $2, $3)
		RETURNING id, name, price, image_path
	`
	var row productRow
	err := r.db.QueryRowContext(ctx, q, p.Name, p.Price, nullableImagePath(p)).
		Scan(&row.id, &row.name, &row.price, &row.imagePath)
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

func (r *ProductPostgres) update(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		UPDATE products
		SET name = $2, price = $3, image_path = $4
		WHERE id = $1
		RETURNING id, name, price, image_path
	`
	var row productRow
	err := r.db.QueryRowContext(ctx, q, p.ID, p.Name, p.Price, nullableImagePath(p)).
		Scan(&row.id, &row.name, &row.price, &row.imagePath)
	if err != nil {
		return nil, err
	}
	out := row.toModel()
	return &out, nil
}

// Delete removes a product by ID. It does not return an error if the row does not exist.
func (r *ProductPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM products WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Rows affected is deliberately ignored: delete-of-missing-id is a no-op.
	_, _ = res.RowsAffected()
	return nil
}
