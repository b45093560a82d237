package modkit

import "strings"

// Option mutates build configuration for a module
type Option func(*Built)

// Built is what a module reads after its options were applied
type Built struct {
	Name   string
	Prefix string
	// Ports carries whatever the caller injected with WithPorts, nil when nothing was
	Ports any
}

// Build applies opts in order, later options win
// The prefix is normalised to a single leading slash
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if b.Prefix != "" {
		b.Prefix = "/" + strings.Trim(b.Prefix, "/")
	}
	return b
}

// WithName sets the module name used in logs and the module registry
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = prefix }
}

// WithPorts injects collaborators the module would otherwise build itself
// The concrete type is owned by the receiving module
func WithPorts[T any](p T) Option {
	return func(b *Built) { b.Ports = p }
}
