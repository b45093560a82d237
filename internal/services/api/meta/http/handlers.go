// Package http serves liveness, readiness, build and policy information
package http

import (
	"context"
	"net/http"
	"time"

	"walletsync/internal/core/version"
	"walletsync/internal/modkit/httpkit"
	phttp "walletsync/internal/platform/net/http"
)

const readyTimeout = 2 * time.Second

// Pinger is implemented by the store seams
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies, every field is optional
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// PG and CH are pinged by /ready when they implement Pinger
	PG any
	CH any
	// Policies is reported as is by /policies
	Policies any
	// LiveAttempts counts login attempts in flight
	LiveAttempts func() int
	// Modules lists the mounted modules
	Modules func() []string
	Now     func() time.Time
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"walletsync-api"`
	Started string `json:"started" example:"2026-10-19T09:00:00Z"`
	Now     string `json:"now"     example:"2026-10-19T09:05:00Z"`
}

// ReadyCheck is one backend probe, Status is ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 10.0.0.5:5432: connect: connection refused"`
}

// ReadyResponse is ok when every backend answered, degraded when one is not
// configured and fail when one is down
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-19T09:05:00Z"`
}

// ServiceResponse describes the running process
type ServiceResponse struct {
	Name    string   `json:"name"    example:"walletsync-api"`
	Started string   `json:"started" example:"2026-10-19T09:00:00Z"`
	Uptime  int64    `json:"uptime"  example:"300"`
	Modules []string `json:"modules" example:"auth,convergence,meta"`
}

// PoliciesResponse reports the convergence budgets in force
type PoliciesResponse struct {
	Policies     any               `json:"policies"`
	LiveAttempts int               `json:"live_attempts" example:"0"`
	Build        version.BuildInfo `json:"build"`
}

type handlers struct{ Deps }

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/policies", h.policies)
}

func (h handlers) stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.ServiceName,
		Started: h.stamp(h.StartedAt),
		Now:     h.stamp(h.Now()),
	}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Now: h.stamp(h.Now())}
	for _, b := range []struct {
		name string
		seam any
	}{{"pg", h.PG}, {"ch", h.CH}} {
		c := probe(ctx, b.name, b.seam)
		out.Checks = append(out.Checks, c)
		switch {
		case c.Status == "fail":
			out.Status = "fail"
		case c.Status != "ok" && out.Status == "ok":
			out.Status = "degraded"
		}
	}
	if out.Status == "fail" {
		return phttp.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

func probe(ctx context.Context, name string, seam any) ReadyCheck {
	if seam == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := seam.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) {
	return version.Info(h.ServiceName), nil
}

// @Summary Service info, uptime and mounted modules
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.ServiceName,
		Started: h.stamp(h.StartedAt),
		Uptime:  int64(h.Now().Sub(h.StartedAt) / time.Second),
		Modules: []string{},
	}
	if h.Modules != nil {
		out.Modules = h.Modules()
	}
	return out, nil
}

// @Summary Convergence budgets and live login attempts
// @Tags Meta
// @Produce json
// @Success 200 {object} PoliciesResponse
// @Router /meta/policies [get]
func (h handlers) policies(*http.Request) (any, error) {
	out := PoliciesResponse{Policies: h.Policies, Build: version.Info(h.ServiceName)}
	if h.LiveAttempts != nil {
		out.LiveAttempts = h.LiveAttempts()
	}
	return out, nil
}
