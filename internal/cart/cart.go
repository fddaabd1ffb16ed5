package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
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

// AddToCartDB adds quantity units of a product to the user's cart, merging
// into an existing line for the same product. The merged quantity may not
// exceed the product's current stock.
func (c *Conf) AddToCartDB(ctx context.Context, userID string, productID string, quantity int) (CartItem, error) {
	var item CartItem
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var stock int
		queryStock := `
			SELECT stock
			FROM products
			WHERE id = $1
		`
		err := tx.QueryRowContext(ctx, queryStock, productID).Scan(&stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to query product stock: %w", err)
		}

		// Check if the product already exists in the cart
		queryCartItem := `
			SELECT id, quantity
			FROM cart_items
			WHERE user_id = $1 AND product_id = $2
		`
		var cartItemID string
		var existingQuantity int
		err = tx.QueryRowContext(ctx, queryCartItem, userID, productID).Scan(&cartItemID, &existingQuantity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				if quantity > stock {
					return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, stock)
				}

				item = CartItem{
					ID:        uuid.NewString(),
					UserID:    userID,
					ProductID: productID,
					Quantity:  quantity,
					CreatedAt: time.Now().UTC(),
					UpdatedAt: time.Now().UTC(),
				}
				queryAddCartItem := `
					INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6)
				`
				_, err = tx.ExecContext(ctx, queryAddCartItem, item.ID, item.UserID, item.ProductID,
					item.Quantity, item.CreatedAt, item.UpdatedAt)
				if err != nil {
					return fmt.Errorf("failed to add product to cart: %w", err)
				}
				return nil
			}
			return fmt.Errorf("failed to query cart items: %w", err)
		}

		// Product already in the cart; merge quantities
		newQuantity := existingQuantity + quantity
		if newQuantity > stock {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, newQuantity, stock)
		}

		queryUpdateCartItem := `
			UPDATE cart_items
			SET quantity = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, user_id, product_id, quantity, created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, queryUpdateCartItem, newQuantity, cartItemID).
			Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update cart item quantity: %w", err)
		}
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return item, nil
}

// GetCartItems returns the user's current cart lines.
func (c *Conf) GetCartItems(ctx context.Context, userID string) (*CartResponse, error) {
	queryItems := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := c.db.QueryContext(ctx, queryItems, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return &CartResponse{Items: items}, nil
}

// UpdateQuantity sets the quantity of the user's cart line for a product.
// The new quantity must not exceed the product's current stock.
func (c *Conf) UpdateQuantity(ctx context.Context, userID string, productID string, quantity int) (CartItem, error) {
	var item CartItem
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var stock int
		queryStock := `
			SELECT stock
			FROM products
			WHERE id = $1
		`
		err := tx.QueryRowContext(ctx, queryStock, productID).Scan(&stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to query product stock: %w", err)
		}
		if quantity > stock {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, stock)
		}

		queryUpdate := `
			UPDATE cart_items
			SET quantity = $1, updated_at = NOW()
			WHERE user_id = $2 AND product_id = $3
			RETURNING id, user_id, product_id, quantity, created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, queryUpdate, quantity, userID, productID).
			Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return CartItem{}, err
	}
	return item, nil
}

// RemoveFromCart deletes the user's cart line for a product.
func (c *Conf) RemoveFromCart(ctx context.Context, userID string, productID string) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
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
