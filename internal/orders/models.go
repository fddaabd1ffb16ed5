package orders

import "time"

// Order is a placed order. TotalPrice is in the smallest currency unit and
// always equals the sum of its items' price snapshots.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	ShippingAddressID string      `json:"shipping_address_id"`
	Status            Status      `json:"status"`
	TotalPrice        int64       `json:"total_price"`
	Items             []OrderItem `json:"items"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// OrderItem is an immutable line of an order. Price is the line amount
// captured at order time: unit price * quantity. Later product price
// changes never touch it.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Stats is the admin dashboard fold over existing orders.
type Stats struct {
	TotalOrders int64 `json:"total_orders"`
	PaidOrders  int64 `json:"paid_orders"`
	Revenue     int64 `json:"revenue"`
}
