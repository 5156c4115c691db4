package order_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbatch/internal/order"
)

func newOrdersDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, order.EnsureSchema(context.Background(), db))
	return db
}

func TestEnsureSchema_CreatesOrdersTable(t *testing.T) {
	db := newOrdersDB(t)

	_, err := db.Exec(
		`INSERT INTO orders (id, order_number, customer_name, amount, status, order_date, processed_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		1, "ORD-001", "Alice", 8000, "PENDING", time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	// Running the migration again must not disturb existing data.
	require.NoError(t, order.EnsureSchema(context.Background(), db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestScanRow(t *testing.T) {
	db := newOrdersDB(t)

	orderDate := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	processedDate := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	_, err := db.Exec(
		`INSERT INTO orders (id, order_number, customer_name, amount, status, order_date, processed_date)
		 VALUES (1, 'ORD-001', 'Alice', 8000, 'PENDING', ?, NULL),
		        (2, 'ORD-002', 'Bob', 12000, 'COMPLETED', ?, ?)`,
		orderDate, orderDate, processedDate)
	require.NoError(t, err)

	rows, err := db.Query(
		`SELECT id, order_number, customer_name, amount, status, order_date, processed_date
		 FROM orders ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	first, err := order.ScanRow(rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "ORD-001", first.OrderNumber)
	assert.Equal(t, "Alice", first.CustomerName)
	assert.Equal(t, 8000, first.Amount)
	assert.Equal(t, order.StatusPending, first.Status)
	assert.True(t, first.OrderDate.Equal(orderDate))
	assert.Nil(t, first.ProcessedDate)

	require.True(t, rows.Next())
	second, err := order.ScanRow(rows)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, second.Status)
	require.NotNil(t, second.ProcessedDate)
	assert.True(t, second.ProcessedDate.Equal(processedDate))

	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}
