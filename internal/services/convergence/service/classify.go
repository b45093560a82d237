package service

import (
	"context"

	dom "walletsync/internal/services/convergence/domain"
)

// tierScope selects which tiers count when deciding rejection and review
type tierScope uint8

const (
	// scopeAny looks at every tier, used while converging
	scopeAny tierScope = iota
	// scopeGold only looks at GOLD, used by the snapshot check
	scopeGold
)

func (s tierScope) rejected(t dom.Tiers) bool {
	if s == scopeGold {
		return t.RejectedFor(dom.TierGold)
	}
	return t.RejectedFor(dom.TierSilver) || t.RejectedFor(dom.TierGold)
}

func (s tierScope) inReview(t dom.Tiers) bool {
	if s == scopeGold {
		return t.PendingFor(dom.TierGold)
	}
	return t.UnderReviewFor(dom.TierSilver) || t.UnderReviewFor(dom.TierGold)
}

// classifyKyc turns one tier sample into a KYC state
// approval costs one extra eligibility lookup, any error aborts the sample
func (s *Svc) classifyKyc(ctx context.Context, userID string, scope tierScope) (dom.KycState, error) {
	tiers, err := s.tiers.Tiers(ctx, userID)
	if err != nil {
		return dom.KycPending, err
	}
	switch {
	case tiers.ApprovedFor(dom.TierGold):
		ok, err := s.eligibility.EligibleForBuy(ctx, userID)
		if err != nil {
			return dom.KycPending, err
		}
		if ok {
			return dom.KycVerifiedEligible, nil
		}
		return dom.KycVerifiedIneligible, nil
	case scope.rejected(tiers):
		return dom.KycFailed, nil
	case scope.inReview(tiers):
		return dom.KycInReview, nil
	default:
		return dom.KycPending, nil
	}
}
