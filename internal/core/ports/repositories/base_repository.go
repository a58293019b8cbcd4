package repositories

import (
	"context"
)

// TransactionManager scopes several repository calls into one storage transaction.
type TransactionManager interface {
	// WithinTx runs fn inside a transaction. Repository calls made with the ctx passed to fn
	// join that transaction; the transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
