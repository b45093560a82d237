package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ptime "walletsync/internal/platform/time"
	dom "walletsync/internal/services/auth/domain"
)

const testGUID = "3b9f1c7e-7f1d-4c44-9b59-0f4f6d1e2a10"

type fakeSessions struct {
	mu         sync.Mutex
	sid        string
	sidErr     error
	sidCalls   int
	payload    dom.PayloadResponse
	payloadErr error
	codes      map[string]string
	submitted  []string
	gate       chan dom.PayloadResponse
	// status, when set, answers every auth status sample without waiting on gate
	status *dom.PayloadResponse
}

func (f *fakeSessions) SessionID(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sidCalls++
	return f.sid, f.sidErr
}

func (f *fakeSessions) EncryptedPayload(_ context.Context, _, sid string) (dom.PayloadResponse, error) {
	if sid == "" {
		return dom.PayloadResponse{}, errors.New("no session")
	}
	return f.payload, f.payloadErr
}

func (f *fakeSessions) SubmitTwoFactor(_ context.Context, _, _, code string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, code)
	if frag, ok := f.codes[code]; ok {
		return frag, nil
	}
	return "", errors.New("incorrect code")
}

// PollAuthStatus blocks until the test releases an answer through gate
func (f *fakeSessions) PollAuthStatus(ctx context.Context, _, _ string) (dom.PayloadResponse, error) {
	if f.status != nil {
		return *f.status, nil
	}
	select {
	case pr := <-f.gate:
		return pr, nil
	case <-ctx.Done():
		return dom.PayloadResponse{}, ctx.Err()
	}
}

type fakeCountdown struct {
	ch  chan int
	err error
}

func (f *fakeCountdown) CheckEmailTimer(context.Context) (<-chan int, error) {
	return f.ch, f.err
}

type fakeDecryptor struct {
	mu   sync.Mutex
	err  error
	seen []string
}

func (f *fakeDecryptor) Decrypt(payload, _ string) (dom.WalletIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, payload)
	if f.err != nil {
		return dom.WalletIdentity{}, f.err
	}
	return dom.WalletIdentity{GUID: testGUID, SharedKey: "shared"}, nil
}

func (f *fakeDecryptor) payloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

type fakeCreds struct {
	mu      sync.Mutex
	saved   []dom.StoredIdentity
	cleared []string
}

func (f *fakeCreds) SaveIdentity(_ context.Context, id dom.StoredIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, id)
	return nil
}

func (f *fakeCreds) ClearCredentials(_ context.Context, guid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, guid)
	return nil
}

func (f *fakeCreds) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved), len(f.cleared)
}

// recNotifier forwards terminal notifications to a channel
type recNotifier struct {
	terminal chan dom.Notification
}

func (n *recNotifier) Notify(_ context.Context, _ string, x dom.Notification) {
	if x.Terminal {
		n.terminal <- x
	}
}

type rig struct {
	sessions  *fakeSessions
	countdown *fakeCountdown
	decryptor *fakeDecryptor
	creds     *fakeCreds
	notifier  *recNotifier
}

func newRig() *rig {
	return &rig{
		sessions: &fakeSessions{
			sid:     "sid-1",
			payload: dom.PayloadResponse{Status: 200, Body: `{"payload":"enc","guid":"` + testGUID + `"}`},
			codes:   map[string]string{},
			gate:    make(chan dom.PayloadResponse, 1),
		},
		countdown: &fakeCountdown{ch: make(chan int, 8)},
		decryptor: &fakeDecryptor{},
		creds:     &fakeCreds{},
		notifier:  &recNotifier{terminal: make(chan dom.Notification, 4)},
	}
}

func (r *rig) options() Options {
	return Options{
		Sessions:    r.sessions,
		Countdown:   r.countdown,
		Decryptor:   r.decryptor,
		Credentials: r.creds,
		Notifier:    r.notifier,
		Clock:       ptime.NewFake(time.Unix(0, 0)),
	}
}

func (r *rig) handshake() *Handshake {
	return NewHandshake(context.Background(), "att-1", testGUID, "secret", "", r.options())
}

func emailPending() dom.PayloadResponse {
	return dom.PayloadResponse{Status: 401, ErrorBody: `{"initial_error":"Unknown Browser","authorization_required":true}`}
}

func waitTerminal(t *testing.T, r *rig) dom.Notification {
	t.Helper()
	select {
	case n := <-r.notifier.terminal:
		return n
	case <-time.After(5 * time.Second):
		t.Fatalf("no terminal notification")
		return dom.Notification{}
	}
}

func count(ns []dom.Notification, reason dom.Reason) int {
	c := 0
	for _, n := range ns {
		if n.Reason == reason {
			c++
		}
	}
	return c
}

func terminals(ns []dom.Notification) int {
	c := 0
	for _, n := range ns {
		if n.Terminal {
			c++
		}
	}
	return c
}
