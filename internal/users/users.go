package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAddressNotFound    = errors.New("shipping address not found")
	ErrInvalidRole        = errors.New("invalid role")
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

// InsertUser registers a new account with a bcrypt-hashed password.
func (c *Conf) InsertUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user User
	err = c.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		queryEmail := `
			SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
		`
		if err := tx.QueryRowContext(ctx, queryEmail, nu.Email).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return ErrEmailTaken
		}

		user = User{
			ID:            uuid.NewString(),
			Name:          nu.Name,
			Email:         nu.Email,
			Role:          nu.Role,
			ContactNumber: nu.ContactNumber,
			Gender:        nu.Gender,
			Address:       nu.Address,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		queryInsert := `
			INSERT INTO users (id, name, email, password_hash, role, contact_number, gender, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, queryInsert, user.ID, user.Name, user.Email, string(hash),
			user.Role, user.ContactNumber, user.Gender, user.Address, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies the email/password pair. Both an unknown email and a
// wrong password come back as ErrInvalidCredentials.
func (c *Conf) Authenticate(ctx context.Context, email string, password string) (User, error) {
	var user User
	var hash string
	query := `
		SELECT id, name, email, password_hash, role, contact_number, gender, address, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	err := c.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &hash,
		&user.Role, &user.ContactNumber, &user.Gender, &user.Address, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (c *Conf) GetUserByID(ctx context.Context, id string) (User, error) {
	var user User
	query := `
		SELECT id, name, email, role, contact_number, gender, address, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := c.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email,
		&user.Role, &user.ContactNumber, &user.Gender, &user.Address, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces the profile fields of an account. An empty password
// leaves the stored hash untouched.
func (c *Conf) UpdateUser(ctx context.Context, id string, uu UpdateUser) (User, error) {
	var user User
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var taken bool
		queryEmail := `
			SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)
		`
		if err := tx.QueryRowContext(ctx, queryEmail, uu.Email, id).Scan(&taken); err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}

		queryUpdate := `
			UPDATE users
			SET name = $1, email = $2, contact_number = $3, gender = $4, address = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING id, name, email, role, contact_number, gender, address, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, queryUpdate, uu.Name, uu.Email, uu.ContactNumber, uu.Gender, uu.Address, id).
			Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.ContactNumber, &user.Gender,
				&user.Address, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		if uu.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(uu.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			queryPassword := `
				UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
			`
			if _, err := tx.ExecContext(ctx, queryPassword, string(hash), id); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateRole is the only path that changes an account's role.
func (c *Conf) UpdateRole(ctx context.Context, id string, role string) (User, error) {
	switch role {
	case "BUYER", "SELLER", "ADMIN":
	default:
		return User{}, ErrInvalidRole
	}

	var user User
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, email, role, contact_number, gender, address, created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, query, role, id).Scan(&user.ID, &user.Name, &user.Email,
		&user.Role, &user.ContactNumber, &user.Gender, &user.Address, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}

func (c *Conf) DeleteUser(ctx context.Context, id string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (c *Conf) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, name, email, role, contact_number, gender, address, created_at, updated_at
		FROM users
		ORDER BY created_at
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.ContactNumber,
			&user.Gender, &user.Address, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return list, nil
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
