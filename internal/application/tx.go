package application

import "context"

// Transactor runs a function inside a storage transaction. Repository calls
// made with the context passed to fn join the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactor runs the function directly, without a transaction. Used by
// unit tests that fake out the repositories.
type NopTransactor struct{}

// WithinTx implements Transactor.
func (NopTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
