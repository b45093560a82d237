package domain

import (
	"context"

	perr "walletsync/internal/platform/errors"
)

// SessionSource is the wallet API the handshake talks to
type SessionSource interface {
	SessionID(ctx context.Context, guid string) (string, error)
	EncryptedPayload(ctx context.Context, guid, sessionID string) (PayloadResponse, error)
	SubmitTwoFactor(ctx context.Context, sessionID, guid, code string) (string, error)
	PollAuthStatus(ctx context.Context, guid, sessionID string) (PayloadResponse, error)
}

// CountdownSource supplies the remaining seconds of the email confirmation window
type CountdownSource interface {
	CheckEmailTimer(ctx context.Context) (<-chan int, error)
}

// Decryptor opens a wallet payload, failures wrap ErrBadPairing or ErrBadPassword when they apply
type Decryptor interface {
	Decrypt(payload, password string) (WalletIdentity, error)
}

// CredentialStore persists what a login proves
type CredentialStore interface {
	SaveIdentity(ctx context.Context, id StoredIdentity) error
	ClearCredentials(ctx context.Context, guid string) error
}

// Notifier receives every notification of every attempt
type Notifier interface {
	Notify(ctx context.Context, attemptID string, n Notification)
}

var (
	// ErrBadPairing means the payload decrypted but is not a usable wallet
	ErrBadPairing = perr.New(perr.ErrorCodeCredential, "bad pairing data")
	// ErrBadPassword means the password does not open the payload
	ErrBadPassword = perr.New(perr.ErrorCodeCredential, "wrong password")
)

// AuthPort is the service surface used by transports
type AuthPort interface {
	Start(ctx context.Context, in StartInput) (AttemptView, error)
	Attempt(ctx context.Context, id string) (AttemptView, error)
	SubmitSecondFactor(ctx context.Context, id, code string) (AttemptView, error)
	Cancel(ctx context.Context, id string) (AttemptView, error)
}
