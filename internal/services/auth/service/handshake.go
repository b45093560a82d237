// Package service drives login handshakes, one state machine per attempt
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"walletsync/internal/core/poll"
	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/logger"
	dom "walletsync/internal/services/auth/domain"
)

const resetTimeout = 5 * time.Second

// race is the shared cancellation token of the email countdown and the auth status poll
type race struct {
	cancel context.CancelFunc
}

// Handshake is one login attempt
// every transition happens under mu and the finished latch admits exactly one terminal event
type Handshake struct {
	id   string
	guid string
	o    Options

	ctx    context.Context
	cancel context.CancelFunc
	onDone func(*Handshake)
	wg     sync.WaitGroup

	waiting atomic.Bool

	mu        sync.Mutex
	state     dom.State
	sessionID string
	password  []byte
	challenge dom.Response
	authType  dom.AuthType
	race      *race
	finished  bool
	reason    dom.Reason
	journal   []dom.Notification
}

// NewHandshake builds an idle attempt, sessionID may carry a session from an earlier attempt
func NewHandshake(parent context.Context, id, guid, password, sessionID string, o Options) *Handshake {
	ctx, cancel := context.WithCancel(logger.WithAttempt(parent, id))
	return &Handshake{
		id:        id,
		guid:      guid,
		o:         o.withDefaults(),
		ctx:       ctx,
		cancel:    cancel,
		state:     dom.StateIdle,
		sessionID: sessionID,
		password:  []byte(password),
	}
}

// ID returns the attempt id
func (h *Handshake) ID() string { return h.id }

// Waiting reports whether the attempt still waits on the user or the wallet server
func (h *Handshake) Waiting() bool { return h.waiting.Load() }

// State returns the current state
func (h *Handshake) State() dom.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Snapshot returns the state and every notification so far
func (h *Handshake) Snapshot() dom.AttemptView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return dom.AttemptView{
		ID:            h.id,
		GUID:          h.guid,
		State:         h.state,
		Waiting:       h.waiting.Load(),
		AuthType:      h.authType,
		Notifications: append([]dom.Notification{}, h.journal...),
	}
}

// Wait blocks until the background countdown and status poll returned
func (h *Handshake) Wait() { h.wg.Wait() }

// VerifyPassword runs the attempt until it finishes or suspends on a second factor
func (h *Handshake) VerifyPassword() error {
	h.mu.Lock()
	if h.state != dom.StateIdle {
		h.mu.Unlock()
		return perr.Conflictf("attempt %s already started", h.id)
	}
	h.state = dom.StateSessionResolving
	h.waiting.Store(true)
	sid := h.sessionID
	h.mu.Unlock()

	if sid == "" {
		s, err := h.o.Sessions.SessionID(h.ctx, h.guid)
		if err != nil {
			h.sessionFailed(err)
			return nil
		}
		sid = s
		h.mu.Lock()
		h.sessionID = s
		h.mu.Unlock()
	}
	if !h.transition(dom.StateSessionResolving, dom.StatePayloadFetching) {
		return nil
	}

	pr, err := h.o.Sessions.EncryptedPayload(h.ctx, h.guid, sid)
	if err != nil {
		h.sessionFailed(err)
		return nil
	}
	resp, err := dom.ParseResponse(pr)
	if err != nil {
		h.fail(err, dom.ReasonAuthFailed, false)
		return nil
	}
	h.handle(dom.StatePayloadFetching, resp)
	return nil
}

// SubmitSecondFactor verifies a typed code against the session
// an empty or rejected code leaves the attempt pending
func (h *Handshake) SubmitSecondFactor(code string) error {
	h.mu.Lock()
	if h.finished || h.state != dom.StateTwoFactorPending {
		h.mu.Unlock()
		return perr.Conflictf("attempt %s is not awaiting a second factor", h.id)
	}
	sid := h.sessionID
	h.mu.Unlock()

	code = normalizeCode(code)
	if code == "" {
		h.interim(dom.Notification{Reason: dom.ReasonTwoFactorEmpty})
		return nil
	}
	frag, err := h.o.Sessions.SubmitTwoFactor(h.ctx, sid, h.guid, code)
	if err != nil {
		if h.ctx.Err() == nil {
			logger.C(h.ctx).Debug().Err(err).Msg("second factor rejected")
			h.interim(dom.Notification{Reason: dom.ReasonTwoFactorIncorrect})
		}
		return nil
	}

	h.mu.Lock()
	if h.finished || h.state != dom.StateTwoFactorPending {
		h.mu.Unlock()
		return perr.Conflictf("attempt %s was resolved elsewhere", h.id)
	}
	h.stopRaceLocked()
	h.state = dom.StateDecrypting
	base := h.challenge
	h.mu.Unlock()

	resp, err := dom.Splice(base, frag)
	if err != nil {
		h.fail(err, dom.ReasonAuthFailed, false)
		return nil
	}
	h.decrypt(dom.StateDecrypting, resp)
	return nil
}

// Cancel aborts the attempt without notifications or credential side effects
// it is a no-op on a finished attempt
func (h *Handshake) Cancel() {
	h.mu.Lock()
	h.waiting.Store(false)
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	h.state = dom.StateCancelled
	h.stopRaceLocked()
	h.wipeLocked()
	h.mu.Unlock()

	h.cancel()
	h.done()
}

// CancelCountdown stops the email countdown and auth status poll, a typed code is still accepted
func (h *Handshake) CancelCountdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopRaceLocked()
}

func (h *Handshake) handle(from dom.State, resp dom.Response) {
	switch resp.Kind {
	case dom.KindEmailPending:
		h.awaitEmail(from)
	case dom.KindChallengeRequired:
		h.awaitCode(from, resp)
	default:
		h.decrypt(from, resp)
	}
}

func (h *Handshake) awaitEmail(from dom.State) {
	h.mu.Lock()
	if h.finished || h.state != from {
		h.mu.Unlock()
		return
	}
	h.state = dom.StateTwoFactorPending
	h.challenge = dom.Response{}
	rctx, cancel := context.WithCancel(h.ctx)
	r := &race{cancel: cancel}
	h.race = r
	h.emitLocked(dom.Notification{Reason: dom.ReasonCheckEmail})
	sid := h.sessionID
	h.wg.Add(2)
	h.mu.Unlock()

	go h.runCountdown(rctx, r)
	go h.runStatus(rctx, r, sid)
}

func (h *Handshake) awaitCode(from dom.State, resp dom.Response) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished || h.state != from {
		return
	}
	h.state = dom.StateTwoFactorPending
	h.challenge = resp
	h.authType = resp.AuthType
	h.waiting.Store(true)
	h.emitLocked(dom.Notification{Reason: dom.ReasonTwoFactorRequired, AuthType: resp.AuthType})
}

func (h *Handshake) runCountdown(ctx context.Context, r *race) {
	defer h.wg.Done()
	src, err := h.o.Countdown.CheckEmailTimer(ctx)
	if err != nil {
		if h.advance(r, dom.StateFailed) {
			h.fail(err, dom.ReasonAuthFailed, false)
		}
		return
	}
	end, err := poll.Countdown(ctx, toTicks(ctx, src), func(rem int) { h.tick(r, rem) })
	switch end {
	case poll.CountdownExpired:
		if h.advance(r, dom.StateFailed) {
			h.fail(perr.Irrecoverablef("email confirmation window expired"), dom.ReasonPairingFailed, true)
		}
	case poll.CountdownFailed:
		if h.advance(r, dom.StateFailed) {
			h.fail(err, dom.ReasonAuthFailed, false)
		}
	}
}

// runStatus samples the payload endpoint until the login is confirmed
// running out of samples decides nothing, the countdown owns the wait
func (h *Handshake) runStatus(ctx context.Context, r *race, sid string) {
	defer h.wg.Done()
	spec := poll.Spec[dom.PayloadResponse]{
		Interval:    h.o.Status.Interval,
		MaxAttempts: h.o.Status.MaxAttempts,
		IsTerminal: func(pr dom.PayloadResponse) bool {
			return !strings.Contains(pr.ErrorBody, dom.AuthRequiredMarker)
		},
	}
	out, err := poll.Poll(ctx, poll.New(poll.WithClock(h.o.Clock)), spec, func(ctx context.Context) (dom.PayloadResponse, error) {
		return h.o.Sessions.PollAuthStatus(ctx, h.guid, sid)
	})
	if err != nil {
		return
	}
	if !out.Terminal() {
		logger.C(ctx).Debug().Int("attempts", out.Attempts).Msg("auth status budget spent, waiting on countdown")
		return
	}
	if !h.advance(r, dom.StatePayloadFetching) {
		return
	}
	if strings.Contains(out.Value.Body, dom.AuthRequiredMarker) {
		h.fail(perr.Protocolf("confirmed login still requires authorization"), dom.ReasonAuthFailed, false)
		return
	}
	resp, err := dom.ParseResponse(out.Value)
	if err != nil {
		h.fail(err, dom.ReasonAuthFailed, false)
		return
	}
	h.handle(dom.StatePayloadFetching, resp)
}

func (h *Handshake) decrypt(from dom.State, resp dom.Response) {
	if !h.transition(from, dom.StateDecrypting) {
		return
	}
	h.waiting.Store(false)
	h.mu.Lock()
	pw := string(h.password)
	h.mu.Unlock()

	id, err := h.o.Decryptor.Decrypt(resp.Body, pw)
	if err != nil {
		switch {
		case errors.Is(err, dom.ErrBadPairing):
			h.fail(err, dom.ReasonPairingFailed, false)
		case errors.Is(err, dom.ErrBadPassword):
			h.fail(err, dom.ReasonInvalidPassword, false)
		default:
			h.fail(err, dom.ReasonAuthFailed, true)
		}
		return
	}
	if h.ctx.Err() != nil {
		return
	}
	guid := id.GUID
	if guid == "" {
		guid = h.guid
	}
	if err := h.o.Credentials.SaveIdentity(h.ctx, dom.StoredIdentity{
		GUID:          guid,
		SharedKey:     id.SharedKey,
		EmailVerified: true,
	}); err != nil {
		if h.ctx.Err() == nil {
			h.fail(err, dom.ReasonAuthFailed, false)
		}
		return
	}
	h.finish(dom.ReasonSuccess, nil, false)
}

// transition moves from to to unless the attempt moved on
func (h *Handshake) transition(from, to dom.State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished || h.state != from {
		return false
	}
	h.state = to
	return true
}

// advance resolves the email wait for the live race r, the loser gets false
func (h *Handshake) advance(r *race, next dom.State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished || h.state != dom.StateTwoFactorPending || h.race != r {
		return false
	}
	h.stopRaceLocked()
	h.state = next
	h.waiting.Store(false)
	return true
}

func (h *Handshake) tick(r *race, remaining int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished || h.race != r {
		return
	}
	h.emitLocked(dom.Notification{Reason: dom.ReasonCountdownTick, Remaining: remaining})
}

func (h *Handshake) interim(n dom.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished || h.state != dom.StateTwoFactorPending {
		return
	}
	h.emitLocked(n)
}

func (h *Handshake) sessionFailed(err error) {
	h.mu.Lock()
	h.sessionID = ""
	h.mu.Unlock()
	h.fail(err, dom.ReasonAuthFailed, false)
}

func (h *Handshake) fail(err error, reason dom.Reason, reset bool) {
	h.finish(reason, err, reset)
}

// finish latches the terminal state, resets credentials when asked, then emits the one terminal event
func (h *Handshake) finish(reason dom.Reason, cause error, reset bool) {
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	h.reason = reason
	h.state = dom.StateFailed
	if reason == dom.ReasonSuccess {
		h.state = dom.StateSuccess
	}
	h.waiting.Store(false)
	h.stopRaceLocked()
	h.wipeLocked()
	h.mu.Unlock()
	h.cancel()

	log := logger.C(h.ctx)
	if cause != nil {
		log.Warn().Err(cause).Str("reason", string(reason)).Bool("reset", reset).Msg("login failed")
	} else {
		log.Info().Str("reason", string(reason)).Msg("login finished")
	}
	if reset {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), resetTimeout)
		if err := h.o.Credentials.ClearCredentials(rctx, h.guid); err != nil {
			log.Error().Err(err).Msg("credential reset failed")
		}
		cancel()
	}

	h.mu.Lock()
	h.emitLocked(dom.Notification{Reason: reason, Terminal: true})
	h.mu.Unlock()
	h.done()
}

func (h *Handshake) done() {
	if h.onDone != nil {
		h.onDone(h)
	}
}

// outcome returns the terminal reason and the session worth carrying to a retry
func (h *Handshake) outcome() (dom.Reason, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason, h.sessionID
}

func (h *Handshake) stopRaceLocked() {
	if h.race != nil {
		h.race.cancel()
		h.race = nil
	}
}

func (h *Handshake) wipeLocked() {
	for i := range h.password {
		h.password[i] = 0
	}
	h.password = nil
	h.challenge = dom.Response{}
}

// emitLocked appends n to the journal and hands it to the notifier, mu must be held
// the notifier must not call back into the attempt
func (h *Handshake) emitLocked(n dom.Notification) {
	n.Seq = len(h.journal) + 1
	n.At = h.o.Clock.Now().UTC()
	h.journal = append(h.journal, n)
	h.o.Notifier.Notify(h.ctx, h.id, n)
}

// toTicks adapts a plain countdown stream to poll ticks, closing when src closes
func toTicks(ctx context.Context, src <-chan int) <-chan poll.Tick {
	out := make(chan poll.Tick)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- poll.Tick{Remaining: v}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
