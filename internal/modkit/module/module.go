// Package module holds the module contract and the bootstrap port registry
package module

import (
	phttp "walletsync/internal/platform/net/http"
)

// Module mounts routes and exposes a port set for cross module wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
