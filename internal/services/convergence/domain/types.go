// Package domain holds convergence types and the ports the service samples
package domain

import "time"

// KycState is the semantic outcome of a KYC convergence
type KycState string

const (
	KycVerifiedEligible   KycState = "VERIFIED_ELIGIBLE"
	KycVerifiedIneligible KycState = "VERIFIED_INELIGIBLE"
	KycFailed             KycState = "FAILED"
	KycInReview           KycState = "IN_REVIEW"
	// KycPending only exists inside a poll, exhaustion turns it into KycUndecided
	KycPending   KycState = "PENDING"
	KycUndecided KycState = "UNDECIDED"
)

// Settled reports whether the state ends a KYC poll
func (s KycState) Settled() bool { return s != KycPending }

// TierLevel names a verification tier
type TierLevel string

const (
	TierSilver TierLevel = "SILVER"
	TierGold   TierLevel = "GOLD"
)

// TierState is the verification progress of one tier
type TierState string

const (
	TierNone        TierState = "NONE"
	TierPending     TierState = "PENDING"
	TierUnderReview TierState = "UNDER_REVIEW"
	TierRejected    TierState = "REJECTED"
	TierVerified    TierState = "VERIFIED"
)

// Tiers maps each tier to its state, a missing tier is TierNone
type Tiers map[TierLevel]TierState

// State returns the state of level
func (t Tiers) State(level TierLevel) TierState {
	if s, ok := t[level]; ok && s != "" {
		return s
	}
	return TierNone
}

// ApprovedFor reports a verified tier
func (t Tiers) ApprovedFor(level TierLevel) bool { return t.State(level) == TierVerified }

// RejectedFor reports a rejected tier
func (t Tiers) RejectedFor(level TierLevel) bool { return t.State(level) == TierRejected }

// UnderReviewFor reports a tier under manual review
func (t Tiers) UnderReviewFor(level TierLevel) bool { return t.State(level) == TierUnderReview }

// PendingFor reports a submitted tier that nobody picked up yet
func (t Tiers) PendingFor(level TierLevel) bool { return t.State(level) == TierPending }

// OrderState is the lifecycle state of a buy order
type OrderState string

const (
	OrderPendingConfirmation OrderState = "PENDING_CONFIRMATION"
	OrderPendingDeposit      OrderState = "PENDING_DEPOSIT"
	OrderDepositMatched      OrderState = "DEPOSIT_MATCHED"
	OrderPendingExecution    OrderState = "PENDING_EXECUTION"
	OrderFinished            OrderState = "FINISHED"
	OrderFailed              OrderState = "FAILED"
	OrderCanceled            OrderState = "CANCELED"
	OrderUnknown             OrderState = "UNKNOWN"
)

// Terminal reports whether no further transition is expected
func (s OrderState) Terminal() bool {
	switch s {
	case OrderFinished, OrderFailed, OrderCanceled:
		return true
	}
	return false
}

// BuyOrder is one custodial buy order
type BuyOrder struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	State          OrderState `json:"state"`
	FiatCurrency   string     `json:"fiat_currency"`
	FiatMinor      int64      `json:"fiat_minor"`
	CryptoCurrency string     `json:"crypto_currency"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CardStatus is the activation status of a payment card
type CardStatus string

const (
	CardPending CardStatus = "PENDING"
	CardCreated CardStatus = "CREATED"
	CardActive  CardStatus = "ACTIVE"
	CardBlocked CardStatus = "BLOCKED"
	CardExpired CardStatus = "EXPIRED"
	CardUnknown CardStatus = "UNKNOWN"
)

// Terminal reports whether activation is decided
func (s CardStatus) Terminal() bool {
	switch s {
	case CardBlocked, CardExpired, CardActive:
		return true
	}
	return false
}

// Card is a payment card being activated
type Card struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Status    CardStatus `json:"status"`
	Last4     string     `json:"last4,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Kind names a convergence for records and policies
type Kind string

const (
	KindKYC       Kind = "kyc"
	KindTierCheck Kind = "tier_check"
	KindOrder     Kind = "order"
	KindCard      Kind = "card"
)

// OutcomeRecord is one finished convergence, appended to history
type OutcomeRecord struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	State     string    `json:"state"`
	Attempts  int       `json:"attempts"`
	Exhausted bool      `json:"exhausted"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
