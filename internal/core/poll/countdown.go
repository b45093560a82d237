package poll

import (
	"context"
	"time"

	perr "walletsync/internal/platform/errors"
	ptime "walletsync/internal/platform/time"
)

// Tick is one countdown sample, Err ends the countdown as failed
type Tick struct {
	Remaining int
	Err       error
}

// CountdownSpec describes a wall clock driven countdown
type CountdownSpec struct {
	From  int
	Every time.Duration
}

// Validate rejects a non-positive interval or start
func (s CountdownSpec) Validate() error {
	if s.From < 1 {
		return perr.InvalidArgf("countdown: start must be >= 1, got %d", s.From)
	}
	if s.Every <= 0 {
		return perr.InvalidArgf("countdown: step must be > 0, got %s", s.Every)
	}
	return nil
}

// CountdownEnd tells how a countdown finished
type CountdownEnd uint8

const (
	// CountdownExpired means the remaining value reached zero
	CountdownExpired CountdownEnd = iota + 1
	// CountdownCancelled means ctx ended first, no terminal event is due
	CountdownCancelled
	// CountdownFailed means the source reported an error or closed early
	CountdownFailed
)

func (e CountdownEnd) String() string {
	switch e {
	case CountdownExpired:
		return "expired"
	case CountdownCancelled:
		return "cancelled"
	case CountdownFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Countdown consumes ticks until one is <= 0, the stream fails, or ctx ends
// onTick sees every positive value, clamped so the sequence never increases
// Cancellation always wins over a tick that arrives at the same time
func Countdown(ctx context.Context, ticks <-chan Tick, onTick func(remaining int)) (CountdownEnd, error) {
	prev := -1
	for {
		select {
		case <-ctx.Done():
			return CountdownCancelled, nil
		case t, ok := <-ticks:
			if ctx.Err() != nil {
				return CountdownCancelled, nil
			}
			if !ok {
				return CountdownFailed, perr.Unavailablef("countdown: source closed before expiry")
			}
			if t.Err != nil {
				return CountdownFailed, t.Err
			}
			rem := t.Remaining
			if prev >= 0 && rem > prev {
				rem = prev
			}
			prev = rem
			if rem <= 0 {
				return CountdownExpired, nil
			}
			if onTick != nil {
				onTick(rem)
			}
		}
	}
}

// Ticker emits spec.From, spec.From-1 ... 0 once per spec.Every, the first value immediately
// The channel closes after zero or when ctx ends
func Ticker(ctx context.Context, clock ptime.Clock, spec CountdownSpec) <-chan Tick {
	if clock == nil {
		clock = ptime.Real()
	}
	out := make(chan Tick)
	go func() {
		defer close(out)
		for rem := spec.From; rem >= 0; rem-- {
			select {
			case <-ctx.Done():
				return
			case out <- Tick{Remaining: rem}:
			}
			if rem == 0 {
				return
			}
			if err := clock.Sleep(ctx, spec.Every); err != nil {
				return
			}
		}
	}()
	return out
}
