package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-service/internal/orders"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotOwner         = errors.New("order does not belong to payer")
	ErrAmountMismatch   = errors.New("payment amount does not match order total")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrOrderNotPayable  = errors.New("order cannot be paid in its current status")
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Payment is a recorded payment. Amount is in the smallest currency unit.
type Payment struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"order_id"`
	UserID          string    `json:"user_id"`
	Amount          int64     `json:"amount"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	TransactionDate time.Time `json:"transaction_date"`
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// ProcessPayment validates a payment claim against an order and records it.
// The order row stays locked for the whole transaction, so a duplicate
// confirmation sees the PAID status and is rejected rather than producing a
// second payment. The claimed amount must equal the order total exactly;
// both sides are integer minor units, so plain equality is safe.
func (c *Conf) ProcessPayment(ctx context.Context, payerID string, orderID string, amount int64, method string) (Payment, error) {
	var payment Payment
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var ownerID string
		var total int64
		var status orders.Status
		queryLock := `
			SELECT user_id, total_price, status
			FROM orders
			WHERE id = $1
			FOR UPDATE
		`
		err := tx.QueryRowContext(ctx, queryLock, orderID).Scan(&ownerID, &total, &status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if ownerID != payerID {
			return ErrNotOwner
		}
		if status == orders.StatusPaid {
			return ErrOrderAlreadyPaid
		}
		if !status.Payable() {
			return fmt.Errorf("%w: %s", ErrOrderNotPayable, status)
		}
		if amount != total {
			return fmt.Errorf("%w: claimed %d, total %d", ErrAmountMismatch, amount, total)
		}

		payment = Payment{
			ID:              uuid.NewString(),
			OrderID:         orderID,
			UserID:          payerID,
			Amount:          amount,
			PaymentMethod:   method,
			Status:          StatusSuccess,
			TransactionDate: time.Now().UTC(),
		}
		queryInsert := `
			INSERT INTO payments (id, order_id, user_id, amount, payment_method, status, transaction_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.ExecContext(ctx, queryInsert, payment.ID, payment.OrderID, payment.UserID,
			payment.Amount, payment.PaymentMethod, payment.Status, payment.TransactionDate)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		queryPaid := `
			UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, queryPaid, orders.StatusPaid, orderID); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
