package products

import (
	"database/sql"
	"time"
)

// Product is a catalog entry owned by a seller. Price is in the smallest
// currency unit.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	SellerID    string    `json:"seller_id"`
	CategoryID  string    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProduct is the creation payload.
type NewProduct struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"required,min=1"`
	Stock       int    `json:"stock" validate:"min=0"`
	CategoryID  string `json:"category_id"`
}

// UpdateProduct carries the mutable product fields.
type UpdateProduct struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"required,min=1"`
	Stock       int    `json:"stock" validate:"min=0"`
	CategoryID  string `json:"category_id"`
}

// Category groups products.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// nullableID adapts an optional uuid column for scanning and writing.
func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
