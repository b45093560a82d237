// Package service converges eventually consistent wallet resources through the bounded poller
package service

import (
	"context"

	"walletsync/internal/core/poll"
	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/logger"
	ptime "walletsync/internal/platform/time"
	dom "walletsync/internal/services/convergence/domain"

	"github.com/google/uuid"
)

// Service is the convergence port implementation
type Service interface {
	dom.ConvergencePort
}

// Options wires the sources and policies, Recorder and History are optional
type Options struct {
	Tiers       dom.TierSource
	Eligibility dom.EligibilitySource
	Orders      dom.OrderSource
	Cards       dom.CardSource
	Recorder    dom.OutcomeRecorder
	History     dom.OutcomeReader
	Policies    PolicySet
	Clock       ptime.Clock
}

// Svc implements Service
type Svc struct {
	tiers       dom.TierSource
	eligibility dom.EligibilitySource
	orders      dom.OrderSource
	cards       dom.CardSource
	recorder    dom.OutcomeRecorder
	history     dom.OutcomeReader
	policies    PolicySet
	clock       ptime.Clock
}

var _ Service = (*Svc)(nil)

// New constructs the service, zero Policies means DefaultPolicies
func New(opts Options) *Svc {
	if opts.Policies == (PolicySet{}) {
		opts.Policies = DefaultPolicies()
	}
	if opts.Clock == nil {
		opts.Clock = ptime.Real()
	}
	return &Svc{
		tiers:       opts.Tiers,
		eligibility: opts.Eligibility,
		orders:      opts.Orders,
		cards:       opts.Cards,
		recorder:    opts.Recorder,
		history:     opts.History,
		policies:    opts.Policies,
		clock:       opts.Clock,
	}
}

// Policies returns the active policy set
func (s *Svc) Policies() PolicySet { return s.policies }

// PollForKycState converges the KYC state of a user
// a source error settles the poll at once, a poll that never settles is Undecided
func (s *Svc) PollForKycState(ctx context.Context, userID string) (dom.KycResult, error) {
	if userID == "" {
		return dom.KycResult{}, perr.InvalidArgf("user id is required")
	}
	out, err := poll.Poll(ctx, s.engine(ctx, dom.KindKYC, userID), s.kycSpec(s.policies.KYC), func(ctx context.Context) (dom.KycState, error) {
		return s.classifyKyc(ctx, userID, scopeAny)
	})
	if err != nil {
		return dom.KycResult{}, err
	}
	state := out.Value
	if state == dom.KycPending {
		state = dom.KycUndecided
	}
	res := dom.KycResult{State: state, Meta: meta(out.Attempts, out.Exhausted(), out.LastErr)}
	s.record(ctx, dom.KindKYC, userID, string(state), res.Meta)
	return res, nil
}

// CheckTierLevel classifies the tiers once, Pending is returned as is
func (s *Svc) CheckTierLevel(ctx context.Context, userID string) (dom.KycResult, error) {
	if userID == "" {
		return dom.KycResult{}, perr.InvalidArgf("user id is required")
	}
	out, err := poll.Once(ctx, s.kycSpec(s.policies.KYC), func(ctx context.Context) (dom.KycState, error) {
		return s.classifyKyc(ctx, userID, scopeGold)
	})
	if err != nil {
		return dom.KycResult{}, err
	}
	res := dom.KycResult{State: out.Value, Meta: meta(out.Attempts, false, out.LastErr)}
	s.record(ctx, dom.KindTierCheck, userID, string(out.Value), res.Meta)
	return res, nil
}

func (s *Svc) kycSpec(p Policy) poll.Spec[dom.KycState] {
	return poll.Spec[dom.KycState]{
		Interval:    p.Interval,
		MaxAttempts: p.MaxAttempts,
		IsTerminal:  dom.KycState.Settled,
		OnTimeout:   func(dom.KycState) dom.KycState { return dom.KycUndecided },
		OnError:     func(error) (dom.KycState, bool) { return dom.KycPending, true },
	}
}

// PollOrderStatus samples an order until it finishes, fails or is canceled
// exhaustion returns the last observed order
func (s *Svc) PollOrderStatus(ctx context.Context, orderID string) (dom.OrderResult, error) {
	if orderID == "" {
		return dom.OrderResult{}, perr.InvalidArgf("order id is required")
	}
	order, m, err := converge(ctx, s, dom.KindOrder, orderID, s.policies.Order,
		func(o dom.BuyOrder) bool { return o.State.Terminal() },
		func(ctx context.Context) (dom.BuyOrder, error) { return s.orders.BuyOrder(ctx, orderID) },
	)
	if err != nil {
		return dom.OrderResult{}, err
	}
	s.record(ctx, dom.KindOrder, orderID, string(order.State), m)
	return dom.OrderResult{Order: order, Meta: m}, nil
}

// PollCardStatus samples a card until it is active, blocked or expired
// exhaustion returns the last observed card
func (s *Svc) PollCardStatus(ctx context.Context, cardID string) (dom.CardResult, error) {
	if cardID == "" {
		return dom.CardResult{}, perr.InvalidArgf("card id is required")
	}
	card, m, err := converge(ctx, s, dom.KindCard, cardID, s.policies.Card,
		func(c dom.Card) bool { return c.Status.Terminal() },
		func(ctx context.Context) (dom.Card, error) { return s.cards.Card(ctx, cardID) },
	)
	if err != nil {
		return dom.CardResult{}, err
	}
	s.record(ctx, dom.KindCard, cardID, string(card.Status), m)
	return dom.CardResult{Card: card, Meta: m}, nil
}

// History lists recorded outcomes of a subject
func (s *Svc) History(ctx context.Context, q dom.HistoryQuery) ([]dom.OutcomeRecord, error) {
	if s.history == nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "outcome history is not configured")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	return s.history.Recent(ctx, q.Subject, q.Limit)
}

// converge runs a record poll that keeps the last observed value on exhaustion
// a missing record ends the poll at once, a poll that never saw a value fails with the last error
func converge[V any](
	ctx context.Context,
	s *Svc,
	kind dom.Kind,
	subject string,
	p Policy,
	terminal func(V) bool,
	fetch func(context.Context) (V, error),
) (V, dom.Meta, error) {
	var (
		zero V
		seen bool
	)
	out, err := poll.Poll(ctx, s.engine(ctx, kind, subject), poll.Spec[V]{
		Interval:    p.Interval,
		MaxAttempts: p.MaxAttempts,
		IsTerminal:  terminal,
		OnError: func(err error) (V, bool) {
			return zero, perr.IsCode(err, perr.ErrorCodeNotFound)
		},
	}, func(ctx context.Context) (V, error) {
		v, err := fetch(ctx)
		if err == nil {
			seen = true
		}
		return v, err
	})
	if err != nil {
		return zero, dom.Meta{}, err
	}
	m := meta(out.Attempts, out.Exhausted(), out.LastErr)
	if !seen {
		s.record(ctx, kind, subject, "", m)
		if perr.IsCode(out.LastErr, perr.ErrorCodeNotFound) {
			return zero, m, perr.Wrapf(out.LastErr, perr.ErrorCodeNotFound, "%s %s", kind, subject)
		}
		return zero, m, perr.Wrapf(out.LastErr, perr.ErrorCodeUnavailable, "%s %s: no sample after %d attempts", kind, subject, out.Attempts)
	}
	return out.Value, m, nil
}

// engine builds a per call poll engine that logs every attempt
func (s *Svc) engine(ctx context.Context, kind dom.Kind, subject string) *poll.Engine {
	l := logger.C(ctx).With().Str("component", "convergence").Str("kind", string(kind)).Str("subject", subject).Logger()
	return poll.New(
		poll.WithClock(s.clock),
		poll.WithObserver(func(a poll.Attempt) {
			l.Debug().Int("attempt", a.N).Bool("terminal", a.Terminal).Err(a.Err).Msg("sampled")
		}),
	)
}

// record appends the outcome, failures are logged and never surfaced
func (s *Svc) record(ctx context.Context, kind dom.Kind, subject, state string, m dom.Meta) {
	l := logger.C(ctx)
	l.Info().
		Str("component", "convergence").
		Str("kind", string(kind)).
		Str("subject", subject).
		Str("state", state).
		Int("attempts", m.Attempts).
		Bool("exhausted", m.Exhausted).
		Msg("converged")

	if s.recorder == nil {
		return
	}
	rec := dom.OutcomeRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		State:     state,
		Attempts:  m.Attempts,
		Exhausted: m.Exhausted,
		Error:     m.LastError,
		At:        s.clock.Now().UTC(),
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		l.Warn().Err(err).Str("kind", string(kind)).Msg("outcome record failed")
	}
}

func meta(attempts int, exhausted bool, lastErr error) dom.Meta {
	m := dom.Meta{Attempts: attempts, Exhausted: exhausted}
	if lastErr != nil {
		m.LastError = perr.WireFrom(lastErr).Message
	}
	return m
}
