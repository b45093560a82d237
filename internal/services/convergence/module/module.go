// Package module wires convergence into the API using modkit
package module

import (
	"walletsync/internal/modkit"
	"walletsync/internal/modkit/httpkit"
	chttp "walletsync/internal/services/convergence/http"
	"walletsync/internal/services/convergence/repo"
	"walletsync/internal/services/convergence/service"
)

// Module implements the convergence API module
type Module struct {
	name   string
	prefix string

	svc   *service.Svc
	ports Ports
}

// New constructs the convergence module
// sources come from deps.PG unless a Sources value is injected with modkit.WithPorts
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("convergence"),
		modkit.WithPrefix("/convergence"),
	}, opts...)...)

	src, ok := b.Ports.(Sources)
	if !ok {
		if deps.PG == nil {
			panic("convergence module requires PG or injected Sources")
		}
		r := repo.NewPG().Bind(deps.PG)
		src = Sources{Tiers: r, Eligibility: r, Orders: r, Cards: r}
	}

	so := service.Options{
		Tiers:       src.Tiers,
		Eligibility: src.Eligibility,
		Orders:      src.Orders,
		Cards:       src.Cards,
		Policies:    o.Policies,
		Clock:       o.Clock,
	}
	if out := repo.NewOutcomes(deps.CH); out != nil {
		so.Recorder = out
		so.History = out
	}
	svc := service.New(so)

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		svc:    svc,
		ports:  Ports{Convergence: svc, Policies: svc.Policies()},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, nil, func(rr httpkit.Router) {
		chttp.Register(rr, m.svc)
	})
}

// Ports returns the module ports (Convergence, Policies)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }
