package domain

// KycInput selects the user whose tiers are sampled
type KycInput struct {
	UserID string `json:"user_id" validate:"required,max=128,subject_id" example:"u-123"`
}

// OrderInput selects a buy order
type OrderInput struct {
	OrderID string `json:"order_id" validate:"required,max=128,subject_id" example:"o-9f2c"`
}

// CardInput selects a payment card
type CardInput struct {
	CardID string `json:"card_id" validate:"required,max=128,subject_id" example:"c-41aa"`
}

// HistoryQuery lists recorded outcomes for a subject
type HistoryQuery struct {
	Subject string `json:"subject" validate:"required,max=128,subject_id" example:"o-9f2c"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=200" example:"20"`
}

// Meta describes how a convergence ended
type Meta struct {
	Attempts  int    `json:"attempts" example:"3"`
	Exhausted bool   `json:"exhausted" example:"false"`
	LastError string `json:"last_error,omitempty"`
}

// KycResult is the settled KYC state
type KycResult struct {
	State KycState `json:"state" example:"VERIFIED_ELIGIBLE"`
	Meta
}

// OrderResult carries the last observed order
type OrderResult struct {
	Order BuyOrder `json:"order"`
	Meta
}

// CardResult carries the last observed card
type CardResult struct {
	Card Card `json:"card"`
	Meta
}
