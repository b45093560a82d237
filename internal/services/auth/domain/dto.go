package domain

// StartInput opens a login attempt
type StartInput struct {
	GUID     string `json:"guid" validate:"required,uuid" example:"3b9f1c7e-7f1d-4c44-9b59-0f4f6d1e2a10"`
	Password string `json:"password" validate:"required,min=1,max=1024"`
}

// SecondFactorInput carries a typed code, an empty code is answered with a notification
type SecondFactorInput struct {
	Code string `json:"code" validate:"max=64" example:"123456"`
}

// AttemptView is a snapshot of one login attempt
type AttemptView struct {
	ID            string         `json:"id" example:"0d6f3a52-1f9e-4a44-8a3e-d1c27a0b5f4e"`
	GUID          string         `json:"guid"`
	State         State          `json:"state" example:"TWO_FACTOR_PENDING"`
	Waiting       bool           `json:"waiting"`
	AuthType      AuthType       `json:"auth_type,omitempty"`
	Notifications []Notification `json:"notifications"`
}
