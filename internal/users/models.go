package users

import "time"

// User is an account row. The password hash never leaves this package.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	ContactNumber string    `json:"contact_number"`
	Gender        string    `json:"gender"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser is the registration payload.
type NewUser struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role" validate:"required,oneof=BUYER SELLER"`
	ContactNumber string `json:"contact_number"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
}

// UpdateUser carries the mutable profile fields. Role is deliberately
// absent; only an admin may change it through UpdateRole.
type UpdateUser struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"omitempty,min=8"`
	ContactNumber string `json:"contact_number"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
}

// ShippingAddress is a delivery address owned by a user.
type ShippingAddress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewShippingAddress is the address creation payload.
type NewShippingAddress struct {
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required"`
}
