// Package repokit holds the seams SQL repos are written against
package repokit

import (
	"context"

	"showroom/internal/platform/store"
)

type (
	// Queryer is the read and write surface a bound repo uses
	Queryer = store.RowQuerier
	// TxRunner runs a function inside one transaction
	TxRunner = store.TxRunner
	// Rows is a result set
	Rows = store.Rows
	// Row is a single row result
	Row = store.Row
)

// WithTx runs fn in a transaction on tx. Repos bound to the Queryer fn
// receives share the transaction
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
