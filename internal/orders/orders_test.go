package orders

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/stores/postgres"
)

// testDB connects to the database named by STOREFRONT_POSTGRES_TEST_DSN and
// skips the test when it is not set.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_POSTGRES_TEST_DSN not set")
	}

	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.RunMigrations(db))

	_, err = db.Exec(`TRUNCATE payments, order_items, orders, cart_items, products, categories, shipping_addresses, users CASCADE`)
	require.NoError(t, err)
	return db
}

type fixture struct {
	buyerID   string
	sellerID  string
	addressID string
}

func seedFixture(t *testing.T, db *sql.DB) fixture {
	t.Helper()

	f := fixture{
		buyerID:   uuid.NewString(),
		sellerID:  uuid.NewString(),
		addressID: uuid.NewString(),
	}
	_, err := db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, 'Buyer', $2, 'x', 'BUYER'), ($3, 'Seller', $4, 'x', 'SELLER')`,
		f.buyerID, f.buyerID+"@test.local", f.sellerID, f.sellerID+"@test.local")
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO shipping_addresses (id, user_id, address_line, city, state, postal_code, country)
		VALUES ($1, $2, '1 Main St', 'Pune', 'MH', '411001', 'IN')`,
		f.addressID, f.buyerID)
	require.NoError(t, err)
	return f
}

func seedProduct(t *testing.T, db *sql.DB, sellerID string, price int64, stock int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO products (id, name, price, stock, seller_id)
		VALUES ($1, 'Widget', $2, $3, $4)`, id, price, stock, sellerID)
	require.NoError(t, err)
	return id
}

func seedCartLine(t *testing.T, db *sql.DB, userID string, productID string, quantity int) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`, uuid.NewString(), userID, productID, quantity)
	require.NoError(t, err)
}

func productStock(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()

	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock))
	return stock
}

func cartLineCount(t *testing.T, db *sql.DB, userID string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&n))
	return n
}

func TestPlaceOrderSuccess(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	productB := seedProduct(t, db, f.sellerID, 250, 4)
	seedCartLine(t, db, f.buyerID, productA, 2)
	seedCartLine(t, db, f.buyerID, productB, 3)

	conf, err := NewConf(db)
	require.NoError(t, err)

	order, err := conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(2*500+3*250), order.TotalPrice)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 8, productStock(t, db, productA))
	assert.Equal(t, 1, productStock(t, db, productB))
	assert.Equal(t, 0, cartLineCount(t, db, f.buyerID))
}

func TestPlaceOrderInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	productB := seedProduct(t, db, f.sellerID, 250, 2)
	seedCartLine(t, db, f.buyerID, productA, 2)
	seedCartLine(t, db, f.buyerID, productB, 3)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing moved: stock, cart and orders are all as seeded.
	assert.Equal(t, 10, productStock(t, db, productA))
	assert.Equal(t, 2, productStock(t, db, productB))
	assert.Equal(t, 2, cartLineCount(t, db, f.buyerID))

	var orderCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	assert.Equal(t, 0, orderCount)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderUnknownAddress(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	seedCartLine(t, db, f.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.PlaceOrder(context.Background(), f.buyerID, uuid.NewString())
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestPlaceOrderAddressOfAnotherUser(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	other := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	seedCartLine(t, db, f.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.PlaceOrder(context.Background(), f.buyerID, other.addressID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestConcurrentPlacementNeverOversells(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	other := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 1)
	seedCartLine(t, db, f.buyerID, productA, 1)
	seedCartLine(t, db, other.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	placements := []struct{ userID, addressID string }{
		{f.buyerID, f.addressID},
		{other.buyerID, other.addressID},
	}
	for i, p := range placements {
		wg.Add(1)
		go func(i int, userID, addressID string) {
			defer wg.Done()
			_, errs[i] = conf.PlaceOrder(context.Background(), userID, addressID)
		}(i, p.userID, p.addressID)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, productStock(t, db, productA))
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	seedCartLine(t, db, f.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	order, err := conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	require.NoError(t, err)

	order, err = conf.UpdateStatus(context.Background(), order.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, order.Status)

	// Skipping SHIPPED is not allowed.
	_, err = conf.UpdateStatus(context.Background(), order.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// PAID is never a manual target.
	_, err = conf.UpdateStatus(context.Background(), order.ID, StatusPaid)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	got, err := conf.GetOrderByID(context.Background(), order.ID, f.buyerID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestGetOrderByIDOwnership(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	other := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	seedCartLine(t, db, f.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	order, err := conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	require.NoError(t, err)

	_, err = conf.GetOrderByID(context.Background(), order.ID, other.buyerID, false)
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := conf.GetOrderByID(context.Background(), order.ID, other.buyerID, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestDeleteOrderOwnership(t *testing.T) {
	db := testDB(t)
	f := seedFixture(t, db)
	other := seedFixture(t, db)
	productA := seedProduct(t, db, f.sellerID, 500, 10)
	seedCartLine(t, db, f.buyerID, productA, 1)

	conf, err := NewConf(db)
	require.NoError(t, err)

	order, err := conf.PlaceOrder(context.Background(), f.buyerID, f.addressID)
	require.NoError(t, err)

	err = conf.DeleteOrder(context.Background(), order.ID, other.buyerID, false)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = conf.DeleteOrder(context.Background(), order.ID, f.buyerID, false)
	require.NoError(t, err)

	_, err = conf.GetOrderByID(context.Background(), order.ID, f.buyerID, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
