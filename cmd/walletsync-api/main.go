// @title         walletsync API
// @version       0.1.0
// @description   Status convergence and wallet login handshake endpoints

package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"walletsync/internal/modkit/repokit"
	"walletsync/internal/platform/config"
	"walletsync/internal/platform/logger"
	phttp "walletsync/internal/platform/net/http"
	"walletsync/internal/platform/store"

	"walletsync/internal/services/api"
)

func main() {
	fMigrate := flag.Bool("migrate", false, "create tables before serving (also PG_AUTO_MIGRATE=true)")
	flag.Parse()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	logger.Init(logger.FromEnv("walletsync-api"))
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "walletsync-api",
			PG: store.PGConfig{
				Enabled:          true,
				URL:              pgCfg.MustString("DBURL"),
				MaxConns:         int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs:      pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:           pgCfg.MayBool("LOG_SQL", false),
				StatementTimeout: pgCfg.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
			},
			CH: store.CHConfig{
				Enabled:    chURL != "",
				URL:        chURL,
				Database:   chCfg.MayString("DATABASE", ""),
				ClientRole: "walletsync",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(ctx, st)

	if *fMigrate || pgCfg.MayBool("AUTO_MIGRATE", false) {
		if err := migrate(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("schema migration failed")
		}
		l.Info().Msg("schema ensured")
	}

	// reads CORE_API_PORT, CORE_API_READ_HEADER_TIMEOUT and CORE_API_SHUTDOWN_TIMEOUT
	srv := phttp.NewServer(apiCfg)

	mounted, err := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)
	if err != nil {
		l.Panic().Err(err).Msg("api mount failed")
	}

	srv.OnShutdown(mounted.Auth.Close)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
