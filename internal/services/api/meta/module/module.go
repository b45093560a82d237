// Package module wires the meta endpoints into the API
package module

import (
	"time"

	"walletsync/internal/modkit"
	"walletsync/internal/modkit/httpkit"
	"walletsync/internal/modkit/module"

	metahttp "walletsync/internal/services/api/meta/http"
)

// Module serves health, readiness and build information
type Module struct {
	prefix string
	deps   metahttp.Deps
}

// Status feeds /meta/policies, inject with modkit.WithPorts
type Status struct {
	Policies     any
	LiveAttempts func() int
}

// New builds the meta module, readiness pings deps.PG and deps.CH
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithPrefix("/meta")}, opts...)...)
	status, _ := b.Ports.(Status)

	d := metahttp.Deps{
		ServiceName:  "walletsync-api",
		StartedAt:    time.Now(),
		Policies:     status.Policies,
		LiveAttempts: status.LiveAttempts,
		Modules:      module.Names,
		PG:           deps.PG,
		CH:           deps.CH,
	}
	return &Module{prefix: b.Prefix, deps: d}
}

// MountRoutes mounts /meta/*
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, nil, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name returns "meta"
func (m *Module) Name() string { return "meta" }

// Ports returns nil, meta offers nothing to other modules
func (m *Module) Ports() any { return nil }
