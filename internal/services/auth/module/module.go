// Package module wires the login handshake into the API using modkit
package module

import (
	"walletsync/internal/adapters/walletapi"
	"walletsync/internal/adapters/walletcrypt"
	"walletsync/internal/modkit"
	"walletsync/internal/modkit/httpkit"
	ahttp "walletsync/internal/services/auth/http"
	"walletsync/internal/services/auth/repo"
	"walletsync/internal/services/auth/service"
)

// Module implements the auth API module
type Module struct {
	name   string
	prefix string

	reg   *service.Registry
	ports Ports
}

// New constructs the auth module
// credentials are stored in deps.PG unless Collaborators.Credentials is injected
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("auth"),
		modkit.WithPrefix("/auth"),
	}, opts...)...)

	c, _ := b.Ports.(Collaborators)
	if c.Sessions == nil {
		c.Sessions = walletapi.NewClient(o.WalletAPI)
	}
	if c.Decryptor == nil {
		c.Decryptor = walletcrypt.New(walletcrypt.WithMaxIterations(o.MaxIterations))
	}
	if c.Credentials == nil {
		if deps.PG == nil {
			panic("auth module requires PG or injected Credentials")
		}
		c.Credentials = repo.NewPG().Bind(deps.PG)
	}
	if c.Countdown == nil {
		spec := o.EmailWait
		if spec.From == 0 {
			spec = defaultEmailWait()
		}
		c.Countdown = service.TimerCountdown{Clock: o.Clock, Spec: spec}
	}

	reg := service.NewRegistry(service.Options{
		Sessions:    c.Sessions,
		Countdown:   c.Countdown,
		Decryptor:   c.Decryptor,
		Credentials: c.Credentials,
		Notifier:    c.Notifier,
		Status:      o.Status,
		Clock:       o.Clock,
	})

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		reg:    reg,
		ports:  Ports{Auth: reg, Registry: reg},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, nil, func(rr httpkit.Router) {
		ahttp.Register(rr, m.reg)
	})
}

// Ports returns the module ports (Auth, Registry)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Close cancels live attempts
func (m *Module) Close() { m.reg.Close() }
