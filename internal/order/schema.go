package order

import (
	"context"
	"database/sql"

	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// ddl creates the orders table. The statement sticks to the syntax subset
// shared by MySQL and SQLite so the same schema serves both drivers.
const ddl = `
CREATE TABLE IF NOT EXISTS orders (
    id             INTEGER PRIMARY KEY,
    order_number   VARCHAR(32)  NOT NULL,
    customer_name  VARCHAR(255) NOT NULL,
    amount         INTEGER      NOT NULL,
    status         VARCHAR(16)  NOT NULL,
    order_date     TIMESTAMP    NOT NULL,
    processed_date TIMESTAMP    NULL
)`

// EnsureSchema creates the orders table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return exception.NewBatchError(exception.ModuleRepository, "failed to create orders table", err)
	}
	logger.Debugf("Orders schema ensured.")
	return nil
}
