// Package repokit holds the seams postgres repositories are written against
package repokit

import "walletsync/internal/platform/store"

type (
	// Queryer is the read and write surface a repo needs, pool or tx
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can also open a transaction
	TxRunner = store.TxRunner

	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag reports rows affected by a write
	CommandTag = store.CommandTag
)

// Binder binds a repo implementation to a Queryer, so one repo runs on the pool or inside a tx
type Binder[T any] interface {
	Bind(Queryer) T
}
