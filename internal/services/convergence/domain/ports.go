package domain

import "context"

// TierSource returns the current verification tiers of a user
type TierSource interface {
	Tiers(ctx context.Context, userID string) (Tiers, error)
}

// EligibilitySource answers whether a verified user may buy
type EligibilitySource interface {
	EligibleForBuy(ctx context.Context, userID string) (bool, error)
}

// OrderSource returns one buy order
type OrderSource interface {
	BuyOrder(ctx context.Context, orderID string) (BuyOrder, error)
}

// CardSource returns one payment card
type CardSource interface {
	Card(ctx context.Context, cardID string) (Card, error)
}

// OutcomeRecorder keeps a history of finished convergences
type OutcomeRecorder interface {
	Record(ctx context.Context, rec OutcomeRecord) error
}

// OutcomeReader lists past convergences of a subject, newest first
type OutcomeReader interface {
	Recent(ctx context.Context, subject string, limit int) ([]OutcomeRecord, error)
}

// ConvergencePort is the service surface used by transports and other modules
type ConvergencePort interface {
	PollForKycState(ctx context.Context, userID string) (KycResult, error)
	CheckTierLevel(ctx context.Context, userID string) (KycResult, error)
	PollOrderStatus(ctx context.Context, orderID string) (OrderResult, error)
	PollCardStatus(ctx context.Context, cardID string) (CardResult, error)
	History(ctx context.Context, q HistoryQuery) ([]OutcomeRecord, error)
}
