package module

import (
	dom "walletsync/internal/services/convergence/domain"
	"walletsync/internal/services/convergence/service"
)

// Ports holds the ports exposed by the convergence module
type Ports struct {
	Convergence dom.ConvergencePort
	Policies    service.PolicySet
}

// Sources replaces the postgres status sources, inject with modkit.WithPorts
type Sources struct {
	Tiers       dom.TierSource
	Eligibility dom.EligibilitySource
	Orders      dom.OrderSource
	Cards       dom.CardSource
}
