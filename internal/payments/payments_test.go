package payments

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/orders"
	"storefront-service/internal/stores/postgres"
)

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

// seedOrder writes a buyer, an address and an order directly, bypassing the
// placement flow, so payment behavior can be tested per status.
func seedOrder(t *testing.T, db *sql.DB, total int64, status orders.Status) (buyerID string, orderID string) {
	t.Helper()

	buyerID = uuid.NewString()
	addressID := uuid.NewString()
	orderID = uuid.NewString()

	_, err := db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, 'Buyer', $2, 'x', 'BUYER')`, buyerID, buyerID+"@test.local")
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO shipping_addresses (id, user_id, address_line, city, state, postal_code, country)
		VALUES ($1, $2, '1 Main St', 'Pune', 'MH', '411001', 'IN')`, addressID, buyerID)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO orders (id, user_id, shipping_address_id, status, total_price)
		VALUES ($1, $2, $3, $4, $5)`, orderID, buyerID, addressID, status, total)
	require.NoError(t, err)
	return buyerID, orderID
}

func orderStatus(t *testing.T, db *sql.DB, orderID string) orders.Status {
	t.Helper()

	var status orders.Status
	require.NoError(t, db.QueryRow(`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status))
	return status
}

func paymentCount(t *testing.T, db *sql.DB, orderID string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM payments WHERE order_id = $1`, orderID).Scan(&n))
	return n
}

func TestProcessPaymentSuccess(t *testing.T) {
	db := testDB(t)
	buyerID, orderID := seedOrder(t, db, 1250, orders.StatusPending)

	conf, err := NewConf(db)
	require.NoError(t, err)

	payment, err := conf.ProcessPayment(context.Background(), buyerID, orderID, 1250, "UPI")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, payment.Status)
	assert.Equal(t, int64(1250), payment.Amount)
	assert.Equal(t, orders.StatusPaid, orderStatus(t, db, orderID))
	assert.Equal(t, 1, paymentCount(t, db, orderID))
}

func TestProcessPaymentAmountMismatch(t *testing.T) {
	db := testDB(t)
	buyerID, orderID := seedOrder(t, db, 1250, orders.StatusPending)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), buyerID, orderID, 1200, "UPI")
	assert.ErrorIs(t, err, ErrAmountMismatch)

	assert.Equal(t, orders.StatusPending, orderStatus(t, db, orderID))
	assert.Equal(t, 0, paymentCount(t, db, orderID))
}

func TestProcessPaymentDuplicateRejected(t *testing.T) {
	db := testDB(t)
	buyerID, orderID := seedOrder(t, db, 1250, orders.StatusPending)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), buyerID, orderID, 1250, "UPI")
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), buyerID, orderID, 1250, "UPI")
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	assert.Equal(t, 1, paymentCount(t, db, orderID))
}

func TestProcessPaymentWrongPayer(t *testing.T) {
	db := testDB(t)
	_, orderID := seedOrder(t, db, 1250, orders.StatusPending)
	otherID, _ := seedOrder(t, db, 900, orders.StatusPending)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), otherID, orderID, 1250, "UPI")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 0, paymentCount(t, db, orderID))
}

func TestProcessPaymentCancelledOrder(t *testing.T) {
	db := testDB(t)
	buyerID, orderID := seedOrder(t, db, 1250, orders.StatusCancelled)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), buyerID, orderID, 1250, "UPI")
	assert.ErrorIs(t, err, ErrOrderNotPayable)
	assert.Equal(t, orders.StatusCancelled, orderStatus(t, db, orderID))
}

func TestProcessPaymentUnknownOrder(t *testing.T) {
	db := testDB(t)
	buyerID, _ := seedOrder(t, db, 1250, orders.StatusPending)

	conf, err := NewConf(db)
	require.NoError(t, err)

	_, err = conf.ProcessPayment(context.Background(), buyerID, uuid.NewString(), 1250, "UPI")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
