package middleware

import (
	"encoding/json"
	"net/http"

	pnet "walletsync/internal/platform/net"
)

// AuthPort resolves the operator behind a request or fails it
type AuthPort interface {
	Parse(r *http.Request) (operator string, err error)
}

// Auth rejects requests the port refuses and tags ctx with the operator otherwise
// A nil port lets every request through
func Auth(p AuthPort) Middleware {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := p.Parse(r)
			if err != nil {
				status, env := pnet.Failure(err, pnet.RequestID(r.Context()))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("WWW-Authenticate", `Bearer realm="walletsync"`)
				w.WriteHeader(status)
				writeJSON(w, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithOperator(r.Context(), op)))
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) { _ = json.NewEncoder(w).Encode(v) }
