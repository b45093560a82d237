package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "walletsync/internal/platform/errors"
	phttp "walletsync/internal/platform/net/http"
)

type pollIn struct {
	UserID string `json:"user_id" validate:"required"`
}

func mounted(t *testing.T) http.Handler {
	t.Helper()
	mux := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(mux), CommonStack(StackOptions{}), func(api Router) {
		MountUnder(api, "/convergence", nil, func(r Router) {
			PostJSON(r, "/kyc/poll", func(_ *http.Request, in pollIn) (any, error) {
				return map[string]string{"user": in.UserID}, nil
			})
			Get(r, "/history/{subject}", func(req *http.Request) (any, error) {
				return Param(req, "subject"), nil
			})
			Post(r, "/boom", func(*http.Request) (any, error) { panic("boom") })
			Post(r, "/down", func(*http.Request) (any, error) { return nil, perr.Unavailablef("wallet api down") })
		})
	})
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRoutesUnderAPIV1(t *testing.T) {
	h := mounted(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/convergence/kyc/poll", `{"user_id":"u-1"}`)
	if rec.Code != http.StatusOK || env.Data.(map[string]any)["user"] != "u-1" {
		t.Fatalf("poll: %d %+v", rec.Code, env)
	}
	if env.RequestID == "" || rec.Header().Get("Cache-Control") == "" {
		t.Fatalf("stack not applied: %+v %v", env, rec.Header())
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/convergence/history/o-9/", "")
	if rec.Code != http.StatusOK || env.Data != "o-9" {
		t.Fatalf("history with trailing slash: %d %+v", rec.Code, env)
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/convergence/kyc/poll", `{}`)
	if rec.Code != http.StatusBadRequest || env.Field != "user_id" {
		t.Fatalf("validation: %d %+v", rec.Code, env)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/convergence/down", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unavailable: %d", rec.Code)
	}
}

func TestCommonStack_RecoversPanics(t *testing.T) {
	h := mounted(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/convergence/boom", "")
	if rec.Code != http.StatusInternalServerError || env.Code != perr.ErrorCodePanic || strings.Contains(env.Error, "boom") {
		t.Fatalf("panic: %d %+v", rec.Code, env)
	}

	rec, _ = do(t, h, http.MethodPut, "/api/v1/convergence/kyc/poll", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method: %d", rec.Code)
	}
}
