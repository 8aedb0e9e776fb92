package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is the subset of *sql.Tx the repositories need. Taking an interface
// instead of the concrete type keeps the service layer testable without
// a live database.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// TxManager implements TxRunner on top of *sql.DB.
type TxManager struct{ db *sql.DB }

// NewTxManager returns a TxManager bound to the provided database.
func NewTxManager(db *sql.DB) *TxManager { return &TxManager{db: db} }

// WithinTx begins a transaction, runs fn, and commits if fn returned
// nil. Any error from fn (or from commit) rolls the transaction back and
// is returned to the caller. Row locks taken inside fn via
// SELECT ... FOR UPDATE are held until the transaction ends.
func (m *TxManager) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
