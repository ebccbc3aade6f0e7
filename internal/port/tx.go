package port

import "context"

// TxManager defines the interface for managing database transactions.
// Repositories called with the ctx handed to fn join the transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
