package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs functions inside a database transaction. Repositories in
// this package pick the transaction handle out of the context, so the same
// repository instances work inside and outside a transaction.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx executes fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction handle carried by the context, falling back
// to the base connection.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db
}

// supportsRowLocking reports whether the connected database honors
// SELECT ... FOR UPDATE. SQLite, used by the in-memory test suites, locks at
// the database level instead and rejects the clause.
func supportsRowLocking(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
