package module

import (
	"walletsync/internal/platform/config"
	ptime "walletsync/internal/platform/time"
	"walletsync/internal/services/convergence/service"
)

// Options controls the convergence module
type Options struct {
	Policies service.PolicySet
	Clock    ptime.Clock
}

// FromConfig reads CONVERGE_* values and the optional policy file
func FromConfig(cfg config.Conf) (Options, error) {
	p, err := service.LoadPolicies(cfg)
	if err != nil {
		return Options{}, err
	}
	return Options{Policies: p}, nil
}
