package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "walletsync/internal/platform/errors"
	phttp "walletsync/internal/platform/net/http"
	dom "walletsync/internal/services/convergence/domain"

	"github.com/go-chi/chi/v5"
)

type fakePort struct {
	lastUser  string
	lastQuery dom.HistoryQuery
	orderErr  error
}

func (f *fakePort) PollForKycState(_ context.Context, userID string) (dom.KycResult, error) {
	f.lastUser = userID
	return dom.KycResult{State: dom.KycVerifiedEligible, Meta: dom.Meta{Attempts: 2}}, nil
}

func (f *fakePort) CheckTierLevel(_ context.Context, userID string) (dom.KycResult, error) {
	f.lastUser = userID
	return dom.KycResult{State: dom.KycInReview, Meta: dom.Meta{Attempts: 1}}, nil
}

func (f *fakePort) PollOrderStatus(_ context.Context, orderID string) (dom.OrderResult, error) {
	if f.orderErr != nil {
		return dom.OrderResult{}, f.orderErr
	}
	return dom.OrderResult{Order: dom.BuyOrder{ID: orderID, State: dom.OrderFinished}}, nil
}

func (f *fakePort) PollCardStatus(_ context.Context, cardID string) (dom.CardResult, error) {
	return dom.CardResult{Card: dom.Card{ID: cardID, Status: dom.CardActive}}, nil
}

func (f *fakePort) History(_ context.Context, q dom.HistoryQuery) ([]dom.OutcomeRecord, error) {
	f.lastQuery = q
	return []dom.OutcomeRecord{{ID: "r1", Kind: dom.KindOrder, Subject: q.Subject, State: "FINISHED"}}, nil
}

func mount(f *fakePort) stdhttp.Handler {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), f)
	return mux
}

func do(t *testing.T, h stdhttp.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var req *stdhttp.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

func TestPollKyc_OK(t *testing.T) {
	f := &fakePort{}
	code, env := do(t, mount(f), "POST", "/kyc/poll", `{"user_id":"u-1"}`)
	if code != stdhttp.StatusOK {
		t.Fatalf("want 200, got %d %v", code, env)
	}
	data, _ := env["data"].(map[string]any)
	if data["state"] != string(dom.KycVerifiedEligible) || f.lastUser != "u-1" {
		t.Fatalf("unexpected body %v", env)
	}
}

func TestPollKyc_ValidationFails(t *testing.T) {
	code, _ := do(t, mount(&fakePort{}), "POST", "/kyc/poll", `{"user_id":""}`)
	if code != stdhttp.StatusBadRequest {
		t.Fatalf("want 400, got %d", code)
	}
}

func TestCheckTier_OK(t *testing.T) {
	code, env := do(t, mount(&fakePort{}), "POST", "/kyc/check", `{"user_id":"u-2"}`)
	data, _ := env["data"].(map[string]any)
	if code != stdhttp.StatusOK || data["state"] != string(dom.KycInReview) {
		t.Fatalf("unexpected %d %v", code, env)
	}
}

func TestPollOrder_NotFoundMapsTo404(t *testing.T) {
	f := &fakePort{orderErr: perr.Newf(perr.ErrorCodeNotFound, "order o-1 not found")}
	code, _ := do(t, mount(f), "POST", "/orders/poll", `{"order_id":"o-1"}`)
	if code != stdhttp.StatusNotFound {
		t.Fatalf("want 404, got %d", code)
	}
}

func TestPollCard_OK(t *testing.T) {
	code, env := do(t, mount(&fakePort{}), "POST", "/cards/poll", `{"card_id":"c-1"}`)
	data, _ := env["data"].(map[string]any)
	card, _ := data["card"].(map[string]any)
	if code != stdhttp.StatusOK || card["status"] != string(dom.CardActive) {
		t.Fatalf("unexpected %d %v", code, env)
	}
}

func TestHistory_QueryParams(t *testing.T) {
	f := &fakePort{}
	code, _ := do(t, mount(f), "GET", "/outcomes?subject=o-1&limit=5", "")
	if code != stdhttp.StatusOK {
		t.Fatalf("want 200, got %d", code)
	}
	if f.lastQuery.Subject != "o-1" || f.lastQuery.Limit != 5 {
		t.Fatalf("unexpected query %+v", f.lastQuery)
	}

	for _, path := range []string{"/outcomes", "/outcomes?subject=x&limit=0", "/outcomes?subject=x&limit=abc", "/outcomes?subject=x&limit=201"} {
		code, _ := do(t, mount(&fakePort{}), "GET", path, "")
		if code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("%s: want 422, got %d", path, code)
		}
	}
}
