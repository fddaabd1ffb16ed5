package cart

import "time"

// CartItem is one line in a user's cart. A user holds at most one line per
// product; repeated adds merge into the existing line.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}
