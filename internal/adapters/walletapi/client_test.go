package walletapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	perr "walletsync/internal/platform/errors"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", APICode: "api-1"})
}

func TestSessionID(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wallet/sessions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("guid") != "g" {
			t.Errorf("guid not sent, form %v err %v", r.PostForm, err)
		}
		_, _ = io.WriteString(w, `{"token":"sid-9"}`)
	})
	sid, err := c.SessionID(context.Background(), "g")
	if err != nil || sid != "sid-9" {
		t.Fatalf("got %q %v", sid, err)
	}
}

func TestSessionID_MissingToken(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{}`) })
	if _, err := c.SessionID(context.Background(), "g"); !perr.IsCode(err, perr.ErrorCodeProtocol) {
		t.Fatalf("want protocol error, got %v", err)
	}
}

func TestEncryptedPayload_StatusClasses(t *testing.T) {
	status := http.StatusOK
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sid-1" {
			t.Errorf("missing session header, got %q", got)
		}
		if r.URL.Path != "/wallet/g-1" || r.URL.Query().Get("format") != "json" {
			t.Errorf("unexpected url %s", r.URL)
		}
		w.WriteHeader(status)
		switch status {
		case http.StatusOK:
			_, _ = io.WriteString(w, `{"payload":"x"}`)
		case http.StatusUnauthorized:
			_, _ = io.WriteString(w, `{"authorization_required":true}`)
		default:
			_, _ = io.WriteString(w, `oops`)
		}
	})

	pr, err := c.EncryptedPayload(context.Background(), "g-1", "sid-1")
	if err != nil || pr.Body != `{"payload":"x"}` || pr.ErrorBody != "" {
		t.Fatalf("2xx: %+v %v", pr, err)
	}

	status = http.StatusUnauthorized
	pr, err = c.EncryptedPayload(context.Background(), "g-1", "sid-1")
	if err != nil || pr.ErrorBody == "" || pr.Status != 401 {
		t.Fatalf("4xx should be returned for classification: %+v %v", pr, err)
	}
	pr, err = c.PollAuthStatus(context.Background(), "g-1", "sid-1")
	if err != nil || pr.Status != 401 || pr.Body != "" || pr.ErrorBody != `{"authorization_required":true}` {
		t.Fatalf("poll must keep the status class: %+v %v", pr, err)
	}

	status = http.StatusBadGateway
	if _, err := c.EncryptedPayload(context.Background(), "g-1", "sid-1"); !perr.Retryable(err) {
		t.Fatalf("5xx must be retryable, got %v", err)
	}
}

func TestOversizedBodyIsProtocolError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"payload":"`+strings.Repeat("a", maxBody)+`"}`)
	})
	if _, err := c.EncryptedPayload(context.Background(), "g-1", "sid-1"); !perr.IsCode(err, perr.ErrorCodeProtocol) {
		t.Fatalf("want protocol error, got %v", err)
	}

	c = newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", maxBody))
	})
	pr, err := c.EncryptedPayload(context.Background(), "g-1", "sid-1")
	if err != nil || len(pr.Body) != maxBody {
		t.Fatalf("a body at the cap must pass, got %d %v", len(pr.Body), err)
	}
}

func TestSubmitTwoFactor(t *testing.T) {
	var form url.Values
	ok := true
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = r.PostForm
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = io.WriteString(w, `{"pbkdf2_iterations":5000,"version":3,"payload":"abc"}`)
	})

	frag, err := c.SubmitTwoFactor(context.Background(), "sid-1", "g-1", "123456")
	if err != nil || frag == "" {
		t.Fatalf("got %q %v", frag, err)
	}
	if form.Get("method") != "get-wallet" || form.Get("payload") != "123456" || form.Get("length") != "6" || form.Get("api_code") != "api-1" {
		t.Fatalf("unexpected form %v", form)
	}

	ok = false
	if _, err := c.SubmitTwoFactor(context.Background(), "sid-1", "g-1", "000000"); !perr.IsCode(err, perr.ErrorCodeCredential) {
		t.Fatalf("want credential error, got %v", err)
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewClient(Options{BaseURL: srv.URL})
	if _, err := c.SessionID(context.Background(), "g"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}

func TestRouteOf(t *testing.T) {
	cases := map[string]string{
		"/wallet/sessions":        "/wallet/sessions",
		"/wallet/abc?format=json": "/wallet/{guid}",
		"/wallet":                 "/wallet",
	}
	for in, want := range cases {
		if got := routeOf(in); got != want {
			t.Fatalf("routeOf(%q) = %q, want %q", in, got, want)
		}
	}
}
