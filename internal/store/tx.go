package store

import "context"

// Tx is an opaque transaction-context handle passed through repository
// calls. The caller that began the transaction commits or rolls it back; the
// engine only forwards the handle. Every repository method accepts a nil Tx,
// meaning the operation runs non-transactionally.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner starts a transaction whose handle the repositories of the same
// backend accept.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}
