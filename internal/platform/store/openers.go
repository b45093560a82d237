package store

import (
	"context"
	"fmt"

	"walletsync/internal/core/poll"
	chx "walletsync/internal/platform/store/ch"
	"walletsync/internal/platform/store/pg"
)

// pingEngine is swapped in tests to avoid wall clock waits
var pingEngine = func() *poll.Engine { return poll.New() }

// openPG opens pg, waits for the pool to answer and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	pc := cfg.PG.withDefaults()

	var tracer pg.QueryTracer
	if pc.LogSQL {
		tracer = pg.Tracer(s.Log, pc.LogArgs)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:              pc.URL,
		AppName:          cfg.AppName,
		MaxConns:         pc.MaxConns,
		MinConns:         pc.MinConns,
		SlowMs:           pc.SlowQueryMs,
		StatementTimeout: pc.StatementTimeout,
	}, tracer)
	if err != nil {
		return nil, err
	}

	// ping the pool directly so boot pings never reach the sql trace
	out, err := poll.Poll(ctx, pingEngine(), poll.Spec[struct{}]{
		Interval:    pc.RetryEvery,
		MaxAttempts: pc.ConnectRetries,
		IsTerminal:  func(struct{}) bool { return true },
	}, func(ctx context.Context) (struct{}, error) {
		toCtx, cancel := context.WithTimeout(ctx, pc.PingTimeout)
		defer cancel()
		return struct{}{}, p.Pool.Ping(toCtx)
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	if !out.Terminal() {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", out.Attempts, out.LastErr)
	}

	s.Log.Debug().Int("attempts", out.Attempts).Msg("postgres ready")
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	role := cfg.CH.ClientRole
	if role == "" {
		role = cfg.AppName
	}
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		Database:   cfg.CH.Database,
		ClientInfo: chx.BuildClientInfo(role, cfg.CH.ClientTag),
	})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("database", cfg.CH.Database).Msg("clickhouse client ready")
	return newCHAdapter(c), nil
}
