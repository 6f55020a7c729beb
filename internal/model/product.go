package model

// Product is the sole domain entity: a catalog item with a database-assigned
// identifier. This is a pure domain model with no persistence tags; the id is
// set exactly once, by the database, on insert.
//
// ImagePath holds the object-storage key of an optional product image. It is
// never written by the create/update endpoints, which lets PUT's
// merge-then-save semantics preserve it.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImagePath string  `json:"image_path,omitempty"`
}
