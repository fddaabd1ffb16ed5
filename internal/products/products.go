package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNotProductOwner  = errors.New("product does not belong to seller")
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

// InsertProduct saves a new catalog entry for the seller.
func (c *Conf) InsertProduct(ctx context.Context, sellerID string, np NewProduct) (Product, error) {
	if np.CategoryID != "" {
		var exists bool
		queryCategory := `
			SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)
		`
		if err := c.db.QueryRowContext(ctx, queryCategory, np.CategoryID).Scan(&exists); err != nil {
			return Product{}, fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return Product{}, ErrCategoryNotFound
		}
	}

	product := Product{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		Stock:       np.Stock,
		SellerID:    sellerID,
		CategoryID:  np.CategoryID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	queryInsert := `
		INSERT INTO products (id, name, description, price, stock, seller_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := c.db.ExecContext(ctx, queryInsert, product.ID, product.Name, product.Description,
		product.Price, product.Stock, product.SellerID, nullableID(product.CategoryID),
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

func (c *Conf) GetProductByID(ctx context.Context, id string) (Product, error) {
	var product Product
	var categoryID sql.NullString
	query := `
		SELECT id, name, description, price, stock, seller_id, category_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	err := c.db.QueryRowContext(ctx, query, id).Scan(&product.ID, &product.Name, &product.Description,
		&product.Price, &product.Stock, &product.SellerID, &categoryID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	product.CategoryID = categoryID.String
	return product, nil
}

// UpdateProductInDB replaces the mutable fields. A seller may only touch
// their own products; admins pass sellerID == "" to skip the ownership check.
func (c *Conf) UpdateProductInDB(ctx context.Context, id string, sellerID string, up UpdateProduct) (Product, error) {
	current, err := c.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if sellerID != "" && current.SellerID != sellerID {
		return Product{}, ErrNotProductOwner
	}

	var product Product
	var categoryID sql.NullString
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, description, price, stock, seller_id, category_id, created_at, updated_at
	`
	err = c.db.QueryRowContext(ctx, query, up.Name, up.Description, up.Price, up.Stock,
		nullableID(up.CategoryID), id).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
			&product.SellerID, &categoryID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	product.CategoryID = categoryID.String
	return product, nil
}

// DeleteProductFromDB removes a product, honoring the same ownership rule
// as UpdateProductInDB.
func (c *Conf) DeleteProductFromDB(ctx context.Context, id string, sellerID string) error {
	current, err := c.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if sellerID != "" && current.SellerID != sellerID {
		return ErrNotProductOwner
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// ListProductsFromDB returns catalog entries with optional name/category
// filters and limit/offset pagination.
func (c *Conf) ListProductsFromDB(ctx context.Context, nameFilter string, categoryID string, limit int, offset int) ([]Product, error) {
	query := `
		SELECT id, name, description, price, stock, seller_id, category_id, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category_id::text = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`
	rows, err := c.db.QueryContext(ctx, query, nameFilter, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		var product Product
		var catID sql.NullString
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Stock, &product.SellerID, &catID, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.CategoryID = catID.String
		list = append(list, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return list, nil
}

// InsertCategory creates a category.
func (c *Conf) InsertCategory(ctx context.Context, name string) (Category, error) {
	category := Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	query := `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	if _, err := c.db.ExecContext(ctx, query, category.ID, category.Name, category.CreatedAt); err != nil {
		return Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories.
func (c *Conf) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var list []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		list = append(list, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return list, nil
}
