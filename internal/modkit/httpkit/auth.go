package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "walletsync/internal/platform/errors"
	pnet "walletsync/internal/platform/net"
	"walletsync/internal/platform/net/middleware"
)

// TokenFunc resolves a bearer token to an operator name
type TokenFunc func(token string) (operator string, err error)

// Port implements middleware.AuthPort over the Authorization header
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a token parser
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse reads "Bearer <token>", the scheme is case insensitive
// Every failure is reported as the same unauthorized error
func (p *Port) Parse(r *http.Request) (string, error) {
	scheme, tok, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	tok = strings.TrimSpace(tok)
	if !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	op, err := p.parse(tok)
	if err != nil || op == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return op, nil
}

// StaticTokens accepts a fixed token set, keyed by token with the operator name as value
func StaticTokens(tokens map[string]string) TokenFunc {
	return func(token string) (string, error) {
		found := ""
		for t, name := range tokens {
			if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
				found = name
			}
		}
		if found == "" {
			return "", perr.Unauthorizedf("unknown operator token")
		}
		return found, nil
	}
}

// Protected mounts fn behind bearer auth, a nil port leaves the routes open
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	if p == nil {
		fn(r)
		return
	}
	r.Group(func(gr Router) {
		gr.Use(middleware.Auth(p))
		fn(gr)
	})
}

// Operator returns the operator that authenticated the request, "" on open deployments
func Operator(r *http.Request) string { return pnet.Operator(r.Context()) }
