package contracts

import "context"

// TxManager runs fn inside a storage transaction. Repositories resolve the
// transaction from the context, so service code stays driver-agnostic.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
