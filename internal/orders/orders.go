package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAddressNotFound   = errors.New("shipping address not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotOwner          = errors.New("order does not belong to user")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// snapshotLine is one cart line read at the start of placement, joined with
// the product row locked for the rest of the transaction.
type snapshotLine struct {
	cartItemID string
	productID  string
	quantity   int
	unitPrice  int64
	stock      int
}

// PlaceOrder turns the user's current cart into an order in one transaction:
// resolve the shipping address, snapshot the cart lines, lock every
// referenced product row, validate all stock levels before touching
// anything, then decrement stock, write the order with price-snapshot
// items, and delete exactly the snapshot's cart lines. Any failure rolls
// the whole thing back.
func (c *Conf) PlaceOrder(ctx context.Context, userID string, shippingAddressID string) (Order, error) {
	var order Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var addressID string
		queryAddress := `
			SELECT id
			FROM shipping_addresses
			WHERE id = $1 AND user_id = $2
		`
		err := tx.QueryRowContext(ctx, queryAddress, shippingAddressID, userID).Scan(&addressID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("failed to query shipping address: %w", err)
		}

		queryLines := `
			SELECT id, product_id, quantity
			FROM cart_items
			WHERE user_id = $1
		`
		rows, err := tx.QueryContext(ctx, queryLines, userID)
		if err != nil {
			return fmt.Errorf("failed to query cart items: %w", err)
		}

		var lines []snapshotLine
		for rows.Next() {
			var line snapshotLine
			if err := rows.Scan(&line.cartItemID, &line.productID, &line.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan cart item: %w", err)
			}
			lines = append(lines, line)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating cart items: %w", err)
		}
		rows.Close()

		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// Lock product rows in a stable order so two placements touching
		// the same products cannot deadlock on each other.
		sort.Slice(lines, func(i, j int) bool { return lines[i].productID < lines[j].productID })

		queryProduct := `
			SELECT price, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`
		for i := range lines {
			err := tx.QueryRowContext(ctx, queryProduct, lines[i].productID).
				Scan(&lines[i].unitPrice, &lines[i].stock)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, lines[i].productID)
				}
				return fmt.Errorf("failed to lock product %s: %w", lines[i].productID, err)
			}
		}

		// Validate the complete snapshot before any stock is touched.
		for _, line := range lines {
			if line.stock < line.quantity {
				return fmt.Errorf("%w: product %s has %d, requested %d",
					ErrInsufficientStock, line.productID, line.stock, line.quantity)
			}
		}

		now := time.Now().UTC()
		order = Order{
			ID:                uuid.NewString(),
			UserID:            userID,
			ShippingAddressID: shippingAddressID,
			Status:            StatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		queryDecrement := `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2
		`
		for _, line := range lines {
			if _, err := tx.ExecContext(ctx, queryDecrement, line.quantity, line.productID); err != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", line.productID, err)
			}

			item := OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: line.productID,
				Quantity:  line.quantity,
				Price:     line.unitPrice * int64(line.quantity),
			}
			order.Items = append(order.Items, item)
			order.TotalPrice += item.Price
		}

		queryOrder := `
			INSERT INTO orders (id, user_id, shipping_address_id, status, total_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.ExecContext(ctx, queryOrder, order.ID, order.UserID, order.ShippingAddressID,
			order.Status, order.TotalPrice, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, queryItem, item.ID, item.OrderID, item.ProductID,
				item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		// Delete only the lines that went into this order. Items added to
		// the cart after the snapshot was read stay in place.
		queryDeleteLine := `
			DELETE FROM cart_items WHERE id = $1
		`
		for _, line := range lines {
			if _, err := tx.ExecContext(ctx, queryDeleteLine, line.cartItemID); err != nil {
				return fmt.Errorf("failed to delete cart item %s: %w", line.cartItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// GetOrdersForUser lists the caller's orders; admins see every order.
func (c *Conf) GetOrdersForUser(ctx context.Context, userID string, isAdmin bool) ([]Order, error) {
	query := `
		SELECT id, user_id, shipping_address_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE $1 OR user_id = $2
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, isAdmin, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.ShippingAddressID, &order.Status,
			&order.TotalPrice, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range list {
		items, err := c.loadItems(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].Items = items
	}
	return list, nil
}

// GetOrderByID fetches one order. Non-admin callers may only fetch their
// own; a mismatch is an ownership error, not a missing order.
func (c *Conf) GetOrderByID(ctx context.Context, orderID string, userID string, isAdmin bool) (Order, error) {
	var order Order
	query := `
		SELECT id, user_id, shipping_address_id, status, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := c.db.QueryRowContext(ctx, query, orderID).Scan(&order.ID, &order.UserID,
		&order.ShippingAddressID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	if !isAdmin && order.UserID != userID {
		return Order{}, ErrNotOwner
	}

	items, err := c.loadItems(ctx, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

// UpdateStatus applies a manual workflow transition after validating it
// against the allowed-edges table. Illegal or unknown transitions leave the
// row untouched.
func (c *Conf) UpdateStatus(ctx context.Context, orderID string, target Status) (Order, error) {
	var order Order
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var current Status
		queryLock := `
			SELECT status
			FROM orders
			WHERE id = $1
			FOR UPDATE
		`
		err := tx.QueryRowContext(ctx, queryLock, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if !current.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
		}

		queryUpdate := `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, user_id, shipping_address_id, status, total_price, created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, queryUpdate, target, orderID).Scan(&order.ID, &order.UserID,
			&order.ShippingAddressID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	items, err := c.loadItems(ctx, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

// DeleteOrder removes an order and, via cascade, its items. Non-admin
// callers may only delete their own orders.
func (c *Conf) DeleteOrder(ctx context.Context, orderID string, userID string, isAdmin bool) error {
	var ownerID string
	err := c.db.QueryRowContext(ctx, `SELECT user_id FROM orders WHERE id = $1`, orderID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to query order: %w", err)
	}
	if !isAdmin && ownerID != userID {
		return ErrNotOwner
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// DashboardStats folds order counts and paid revenue for the admin view.
func (c *Conf) DashboardStats(ctx context.Context) (Stats, error) {
	var stats Stats
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COALESCE(SUM(total_price) FILTER (WHERE status = 'PAID'), 0)
		FROM orders
	`
	err := c.db.QueryRowContext(ctx, query).Scan(&stats.TotalOrders, &stats.PaidOrders, &stats.Revenue)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query dashboard stats: %w", err)
	}
	return stats, nil
}

func (c *Conf) loadItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
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
