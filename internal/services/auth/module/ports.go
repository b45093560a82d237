package module

import (
	dom "walletsync/internal/services/auth/domain"
	"walletsync/internal/services/auth/service"
)

// Ports holds the ports exposed by the auth module
type Ports struct {
	Auth     dom.AuthPort
	Registry *service.Registry
}

// Collaborators replaces the wallet API, decryptor, and credential store
// Inject with modkit.WithPorts, nil fields keep the production adapter
type Collaborators struct {
	Sessions    dom.SessionSource
	Countdown   dom.CountdownSource
	Decryptor   dom.Decryptor
	Credentials dom.CredentialStore
	Notifier    dom.Notifier
}
