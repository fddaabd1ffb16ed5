package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertAddress stores a shipping address for the user.
func (c *Conf) InsertAddress(ctx context.Context, userID string, na NewShippingAddress) (ShippingAddress, error) {
	addr := ShippingAddress{
		ID:          uuid.NewString(),
		UserID:      userID,
		AddressLine: na.AddressLine,
		City:        na.City,
		State:       na.State,
		PostalCode:  na.PostalCode,
		Country:     na.Country,
		CreatedAt:   time.Now().UTC(),
	}
	query := `
		INSERT INTO shipping_addresses (id, user_id, address_line, city, state, postal_code, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := c.db.ExecContext(ctx, query, addr.ID, addr.UserID, addr.AddressLine, addr.City,
		addr.State, addr.PostalCode, addr.Country, addr.CreatedAt)
	if err != nil {
		return ShippingAddress{}, fmt.Errorf("failed to insert shipping address: %w", err)
	}
	return addr, nil
}

// ListAddresses returns the user's shipping addresses.
func (c *Conf) ListAddresses(ctx context.Context, userID string) ([]ShippingAddress, error) {
	query := `
		SELECT id, user_id, address_line, city, state, postal_code, country, created_at
		FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipping addresses: %w", err)
	}
	defer rows.Close()

	var list []ShippingAddress
	for rows.Next() {
		var addr ShippingAddress
		if err := rows.Scan(&addr.ID, &addr.UserID, &addr.AddressLine, &addr.City, &addr.State,
			&addr.PostalCode, &addr.Country, &addr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shipping address: %w", err)
		}
		list = append(list, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping addresses: %w", err)
	}
	return list, nil
}

// DeleteAddress removes an address only when it belongs to the caller.
func (c *Conf) DeleteAddress(ctx context.Context, userID string, addressID string) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete shipping address: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAddressNotFound
	}
	return nil
}
