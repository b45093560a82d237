package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	kit "walletsync/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const dsn = "postgres://walletsync:pw@db:5432/walletsync?sslmode=disable"

func TestPoolConfig_SessionSettings(t *testing.T) {
	pc, err := poolConfig(Config{
		URL:              dsn,
		AppName:          "walletsync-api",
		MaxConns:         6,
		MinConns:         1,
		StatementTimeout: 1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if pc.MaxConns != 6 || pc.MinConns != 1 {
		t.Fatalf("pool sizes not applied: %d/%d", pc.MinConns, pc.MaxConns)
	}
	params := pc.ConnConfig.RuntimeParams
	if params["application_name"] != "walletsync-api" || params["statement_timeout"] != "1500" {
		t.Fatalf("unexpected runtime params %v", params)
	}

	pc, _ = poolConfig(Config{URL: dsn})
	if _, ok := pc.ConnConfig.RuntimeParams["statement_timeout"]; ok {
		t.Fatalf("zero timeout must keep the server default")
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil); err == nil {
		t.Fatalf("want parse error")
	}

	kit.Serial(t)
	boom := errors.New("boom")
	kit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) { return nil, boom })
	if _, err := Open(context.Background(), Config{URL: dsn}, nil); !errors.Is(err, boom) {
		t.Fatalf("want pool error, got %v", err)
	}
}

func TestOpen_KeepsTracerAndSlowThreshold(t *testing.T) {
	kit.Serial(t)
	// zero value pool, never closed
	kit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) { return &pgxpool.Pool{}, nil })

	tr := Tracer(zerolog.Nop(), false)
	p, err := Open(context.Background(), Config{URL: dsn, SlowMs: 250}, tr)
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if p.Tracer != tr || p.SlowMs != 250 || p.Pool == nil {
		t.Fatalf("unexpected client %+v", p)
	}
}

func TestClose_NilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
