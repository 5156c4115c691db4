// Package tx provides a thin abstraction over database/sql transactions.
// It lets steps establish per-chunk transaction boundaries without binding
// components to a concrete *sql.DB, which keeps writers testable with a
// mock transaction.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx represents an ongoing database transaction. It exposes the subset of
// *sql.Tx that batch components need.
type Tx interface {
	// ExecContext executes a write statement within the transaction.
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// QueryContext executes a query within the transaction.
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// QueryRowContext executes a single-row query within the transaction.
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TransactionManager manages the lifecycle of database transactions
// (begin, commit, rollback).
type TransactionManager interface {
	// Begin starts a new database transaction with optional options.
	Begin(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	// Commit commits the given transaction.
	Commit(tx Tx) error
	// Rollback rolls back the given transaction.
	Rollback(tx Tx) error
}

// sqlTx wraps *sql.Tx to satisfy the Tx interface.
type sqlTx struct {
	*sql.Tx
}

// sqlTransactionManager is the database/sql implementation of TransactionManager.
type sqlTransactionManager struct {
	db *sql.DB
}

// NewTransactionManager creates a TransactionManager over the given database.
func NewTransactionManager(db *sql.DB) TransactionManager {
	return &sqlTransactionManager{db: db}
}

// Begin implements TransactionManager.
func (m *sqlTransactionManager) Begin(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	rawTx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &sqlTx{Tx: rawTx}, nil
}

// Commit implements TransactionManager.
func (m *sqlTransactionManager) Commit(tx Tx) error {
	st, ok := tx.(*sqlTx)
	if !ok {
		return fmt.Errorf("unsupported transaction type: %T", tx)
	}
	return st.Tx.Commit()
}

// Rollback implements TransactionManager.
func (m *sqlTransactionManager) Rollback(tx Tx) error {
	st, ok := tx.(*sqlTx)
	if !ok {
		return fmt.Errorf("unsupported transaction type: %T", tx)
	}
	return st.Tx.Rollback()
}
