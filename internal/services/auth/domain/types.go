// Package domain holds the login handshake types, the response variant and the ports it calls
package domain

import "time"

// AuthType is the second factor configured on a wallet
type AuthType int

const (
	AuthTypeNone                AuthType = 0
	AuthTypeYubikey             AuthType = 1
	AuthTypeEmail               AuthType = 2
	AuthTypeYubikeyMtGox        AuthType = 3
	AuthTypeGoogleAuthenticator AuthType = 4
	AuthTypeSMS                 AuthType = 5
)

// CodeBased reports whether the factor is answered with a typed code
func (t AuthType) CodeBased() bool {
	return t == AuthTypeGoogleAuthenticator || t == AuthTypeSMS
}

// State is a handshake state
type State string

const (
	StateIdle             State = "IDLE"
	StateSessionResolving State = "SESSION_RESOLVING"
	StatePayloadFetching  State = "PAYLOAD_FETCHING"
	StateTwoFactorPending State = "TWO_FACTOR_PENDING"
	StateDecrypting       State = "DECRYPTING"
	StateSuccess          State = "SUCCESS"
	StateFailed           State = "FAILED"
	StateCancelled        State = "CANCELLED"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateCancelled
}

// Reason names a notification
type Reason string

const (
	// terminal
	ReasonSuccess         Reason = "SUCCESS"
	ReasonPairingFailed   Reason = "PAIRING_FAILED"
	ReasonInvalidPassword Reason = "INVALID_PASSWORD"
	ReasonAuthFailed      Reason = "AUTH_FAILED"

	// interim
	ReasonCheckEmail         Reason = "CHECK_EMAIL"
	ReasonCountdownTick      Reason = "COUNTDOWN_TICK"
	ReasonTwoFactorRequired  Reason = "TWO_FACTOR_REQUIRED"
	ReasonTwoFactorEmpty     Reason = "TWO_FACTOR_EMPTY"
	ReasonTwoFactorIncorrect Reason = "TWO_FACTOR_INCORRECT"
)

// Terminal reports whether the reason ends an attempt
func (r Reason) Terminal() bool {
	switch r {
	case ReasonSuccess, ReasonPairingFailed, ReasonInvalidPassword, ReasonAuthFailed:
		return true
	}
	return false
}

// Recoverable reports a failure fixed by retrying with corrected input
func (r Reason) Recoverable() bool {
	return r == ReasonPairingFailed || r == ReasonInvalidPassword
}

// Notification is one event emitted by a handshake, in order
type Notification struct {
	Seq       int       `json:"seq"`
	Reason    Reason    `json:"reason"`
	Terminal  bool      `json:"terminal"`
	Remaining int       `json:"remaining,omitempty"`
	AuthType  AuthType  `json:"auth_type,omitempty"`
	At        time.Time `json:"at"`
}

// WalletIdentity is what a decrypted payload yields
type WalletIdentity struct {
	GUID      string
	SharedKey string
}

// StoredIdentity is persisted after a successful login
// the PIN identifier is always cleared so the user picks a new PIN
type StoredIdentity struct {
	GUID          string
	SharedKey     string
	EmailVerified bool
}
