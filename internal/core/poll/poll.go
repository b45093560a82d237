// Package poll implements a bounded sampling loop over eventually consistent status sources
//
// A Spec decides when a sampled value is final and what to yield once the attempt budget is
// spent. The engine holds no cross-call state so concurrent polls never interfere
package poll

import (
	"context"
	"time"

	perr "walletsync/internal/platform/errors"
	ptime "walletsync/internal/platform/time"
)

// Source returns one current status value
type Source[V any] func(ctx context.Context) (V, error)

// Spec configures one convergence
// OnTimeout nil means the last observed value is returned on exhaustion
// OnError nil means a failed sample is one non terminal observation
type Spec[V any] struct {
	Interval    time.Duration
	MaxAttempts int
	IsTerminal  func(V) bool
	OnTimeout   func(last V) V
	OnError     func(err error) (V, bool)
}

// Validate rejects a Spec the poller cannot run
func (s Spec[V]) Validate() error {
	if s.MaxAttempts < 1 {
		return perr.InvalidArgf("poll: max attempts must be >= 1, got %d", s.MaxAttempts)
	}
	if s.Interval <= 0 {
		return perr.InvalidArgf("poll: interval must be > 0, got %s", s.Interval)
	}
	if s.IsTerminal == nil {
		return perr.InvalidArgf("poll: terminal predicate is required")
	}
	return nil
}

// Kind tags an Outcome
type Kind uint8

const (
	// KindTerminal means the terminal predicate held
	KindTerminal Kind = iota + 1
	// KindExhausted means every attempt was spent without a terminal value
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one poll, Terminal(value) or Exhausted(fallback)
type Outcome[V any] struct {
	Kind     Kind
	Value    V
	Attempts int
	LastErr  error
}

// Terminal reports whether the outcome came from the terminal predicate
func (o Outcome[V]) Terminal() bool { return o.Kind == KindTerminal }

// Exhausted reports whether the attempt budget ran out
func (o Outcome[V]) Exhausted() bool { return o.Kind == KindExhausted }

// Attempt describes one sample, passed to observers
type Attempt struct {
	N        int
	Terminal bool
	Err      error
}

// Engine carries the clock and optional observer shared by polls
type Engine struct {
	clock   ptime.Clock
	observe func(Attempt)
}

// Option mutates an Engine
type Option func(*Engine)

// WithClock swaps the clock used between samples
func WithClock(c ptime.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithObserver registers a progress hook called after every sample
func WithObserver(fn func(Attempt)) Option {
	return func(e *Engine) { e.observe = fn }
}

// New builds an Engine, defaulting to the wall clock
func New(opts ...Option) *Engine {
	e := &Engine{clock: ptime.Real()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Poll samples src until spec.IsTerminal holds or spec.MaxAttempts samples were taken
// The first sample is taken immediately. A non nil error is returned only for an invalid
// spec or when ctx ends, every other condition is carried by the Outcome
func Poll[V any](ctx context.Context, e *Engine, spec Spec[V], src Source[V]) (Outcome[V], error) {
	if e == nil {
		e = New()
	}
	if err := spec.Validate(); err != nil {
		return Outcome[V]{}, err
	}

	var (
		last    V
		lastErr error
	)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome[V]{Value: last, Attempts: attempt - 1, LastErr: lastErr}, err
		}

		v, err := src(ctx)
		if err != nil {
			lastErr = err
			if spec.OnError != nil {
				if fv, stop := spec.OnError(err); stop {
					e.notify(Attempt{N: attempt, Terminal: true, Err: err})
					return Outcome[V]{Kind: KindTerminal, Value: fv, Attempts: attempt, LastErr: err}, nil
				}
			}
		} else {
			last = v
			lastErr = nil
			if spec.IsTerminal(v) {
				e.notify(Attempt{N: attempt, Terminal: true})
				return Outcome[V]{Kind: KindTerminal, Value: v, Attempts: attempt}, nil
			}
		}
		e.notify(Attempt{N: attempt, Err: err})

		if attempt >= spec.MaxAttempts {
			fallback := last
			if spec.OnTimeout != nil {
				fallback = spec.OnTimeout(last)
			}
			return Outcome[V]{Kind: KindExhausted, Value: fallback, Attempts: attempt, LastErr: lastErr}, nil
		}

		if err := e.clock.Sleep(ctx, spec.Interval); err != nil {
			return Outcome[V]{Value: last, Attempts: attempt, LastErr: lastErr}, err
		}
	}
}

// Once takes exactly one sample with the same error mapping as Poll
// It is the snapshot counterpart used when a caller wants no retry loop, so a non terminal
// sample is returned as observed and OnTimeout is not applied
func Once[V any](ctx context.Context, spec Spec[V], src Source[V]) (Outcome[V], error) {
	spec.MaxAttempts = 1
	spec.OnTimeout = nil
	if spec.Interval <= 0 {
		spec.Interval = time.Nanosecond
	}
	return Poll(ctx, New(), spec, src)
}

func (e *Engine) notify(a Attempt) {
	if e.observe != nil {
		e.observe(a)
	}
}
