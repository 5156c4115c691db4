// Package order defines the orders domain model shared by the batch
// components.
package order

import (
	"database/sql"
	"fmt"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Order is one row of the orders table.
type Order struct {
	ID            int64
	OrderNumber   string
	CustomerName  string
	Amount        int
	Status        Status
	OrderDate     time.Time
	ProcessedDate *time.Time
}

// TableName returns the database table name for Order.
func (Order) TableName() string {
	return "orders"
}

// String returns a short representation used in logs.
func (o *Order) String() string {
	return fmt.Sprintf("Order[id=%d, number=%s, amount=%d, status=%s]", o.ID, o.OrderNumber, o.Amount, o.Status)
}

// ScanRow maps the current row of a SELECT over the full orders column set
// into an Order. Column order: id, order_number, customer_name, amount,
// status, order_date, processed_date.
func ScanRow(rows *sql.Rows) (*Order, error) {
	var o Order
	var processedDate sql.NullTime
	if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Amount, &o.Status, &o.OrderDate, &processedDate); err != nil {
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}
	if processedDate.Valid {
		t := processedDate.Time
		o.ProcessedDate = &t
	}
	return &o, nil
}
