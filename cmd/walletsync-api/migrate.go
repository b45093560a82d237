package main

import (
	"context"
	"time"

	"walletsync/internal/modkit/repokit"
	authrepo "walletsync/internal/services/auth/repo"
	convrepo "walletsync/internal/services/convergence/repo"
)

// migrateLockKey serializes schema setup across replicas
const migrateLockKey = 0x77616c6c6574

// migrate creates every table in one transaction under an advisory lock
func migrate(ctx context.Context, pg repokit.TxRunner) error {
	tx := repokit.WithBeginHooks(pg, repokit.StatementTimeout(time.Minute), repokit.AdvisoryLock(migrateLockKey))
	return tx.Tx(ctx, func(q repokit.Queryer) error {
		if err := authrepo.EnsureSchema(ctx, q); err != nil {
			return err
		}
		return convrepo.EnsureSchema(ctx, q)
	})
}
