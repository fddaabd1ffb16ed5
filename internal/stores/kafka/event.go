package kafka

import "time"

const TopicOrderPaid = `storefront.order-paid`

// OrderPaidEvent is published after a successful payment confirmation so
// downstream consumers (fulfilment, notifications) can react.
type OrderPaidEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
}
