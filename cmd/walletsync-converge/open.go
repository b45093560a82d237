package main

import (
	"context"
	"time"

	"walletsync/internal/platform/config"
	"walletsync/internal/platform/logger"
	"walletsync/internal/platform/store"
	dom "walletsync/internal/services/convergence/domain"
	"walletsync/internal/services/convergence/repo"
	"walletsync/internal/services/convergence/service"
)

// openService connects to postgres, and clickhouse when SERVICE_CLICKHOUSE_DBURL is set
func openService(ctx context.Context) (dom.ConvergencePort, func(), error) {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	policies, err := service.LoadPolicies(root)
	if err != nil {
		return nil, nil, err
	}

	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(ctx, store.Config{
		AppName: "walletsync-converge",
		PG: store.PGConfig{
			Enabled:          true,
			URL:              pgCfg.MustString("DBURL"),
			MaxConns:         int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs:      pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:           pgCfg.MayBool("LOG_SQL", false),
			StatementTimeout: pgCfg.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
		},
		CH: store.CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			Database:   chCfg.MayString("DATABASE", ""),
			ClientRole: "walletsync",
			ClientTag:  "converge",
		},
	}, store.WithLogger(*l))
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}

	r := repo.NewPG().Bind(st.PG)
	o := service.Options{
		Tiers:       r,
		Eligibility: r,
		Orders:      r,
		Cards:       r,
		Policies:    policies,
	}
	if out := repo.NewOutcomes(st.CH); out != nil {
		o.Recorder = out
		o.History = out
	}
	return service.New(o), release, nil
}
