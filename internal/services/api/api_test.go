package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"walletsync/internal/platform/config"
	perr "walletsync/internal/platform/errors"
	phttp "walletsync/internal/platform/net/http"
	"walletsync/internal/platform/store"
	kit "walletsync/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

// downPG answers every statement with an unavailable error
type downPG struct{}

func (downPG) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, perr.Unavailablef("pg down")
}

func (downPG) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, perr.Unavailablef("pg down")
}

func (downPG) QueryRow(context.Context, string, ...any) store.Row { return downRow{} }

func (downPG) Tx(context.Context, func(q store.RowQuerier) error) error {
	return perr.Unavailablef("pg down")
}

type downRow struct{}

func (downRow) Scan(...any) error { return perr.Unavailablef("pg down") }

func mount(t *testing.T) *chi.Mux {
	t.Helper()
	mux := chi.NewRouter()
	m, err := Mount(phttp.AdaptChi(mux), Options{
		Config: config.New(),
		Store:  &store.Store{PG: downPG{}},
	})
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(m.Auth.Close)
	return mux
}

func do(mux http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMount_MetaIsOpen(t *testing.T) {
	mux := mount(t)
	rec := do(mux, http.MethodGet, "/api/v1/meta/policies", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d %s", rec.Code, rec.Body.String())
	}
	kit.MustContain(t, rec.Body.String(), `"live_attempts":0`)
}

func TestMount_ConvergenceWithoutSamplesIsUnavailable(t *testing.T) {
	t.Setenv("CONVERGE_CARD_MAX_ATTEMPTS", "1")
	mux := mount(t)
	rec := do(mux, http.MethodPost, "/api/v1/convergence/cards/poll", `{"card_id":"c-1"}`, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503 when no sample was taken, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMount_OperatorTokensGuardModules(t *testing.T) {
	t.Setenv("CORE_API_OPERATOR_TOKENS", "ops:tok-1")
	mux := mount(t)

	rec := do(mux, http.MethodGet, "/api/v1/auth/attempts/nope", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", rec.Code)
	}
	rec = do(mux, http.MethodGet, "/api/v1/auth/attempts/nope", "", "tok-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404 with token, got %d %s", rec.Code, rec.Body.String())
	}
	rec = do(mux, http.MethodGet, "/api/v1/meta/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("meta stays open, got %d", rec.Code)
	}
}

func TestOperatorPort(t *testing.T) {
	if operatorPort(nil) != nil {
		t.Fatalf("no tokens means no port")
	}
	if operatorPort([]string{"broken", ":x", "y:"}) != nil {
		t.Fatalf("malformed entries must be skipped")
	}
	if operatorPort([]string{"ops:t"}) == nil {
		t.Fatalf("valid entry should build a port")
	}
}
