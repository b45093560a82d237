package service

import (
	"context"
	"time"

	"walletsync/internal/core/poll"
	"walletsync/internal/platform/logger"
	ptime "walletsync/internal/platform/time"
	dom "walletsync/internal/services/auth/domain"
)

// StatusPolicy bounds the auth status poll that runs during an email wait
type StatusPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultStatusPolicy polls every 2s for two minutes
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{Interval: 2 * time.Second, MaxAttempts: 60}
}

// Options wires a handshake, Notifier is optional
type Options struct {
	Sessions    dom.SessionSource
	Countdown   dom.CountdownSource
	Decryptor   dom.Decryptor
	Credentials dom.CredentialStore
	Notifier    dom.Notifier
	Status      StatusPolicy
	Clock       ptime.Clock
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = ptime.Real()
	}
	if o.Status.MaxAttempts < 1 || o.Status.Interval <= 0 {
		o.Status = DefaultStatusPolicy()
	}
	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}
	return o
}

// LogNotifier writes notifications to the auth logger
type LogNotifier struct{}

// Notify logs n with the attempt id
func (LogNotifier) Notify(_ context.Context, attemptID string, n dom.Notification) {
	log := logger.Named("auth")
	ev := log.Debug()
	if n.Terminal {
		ev = log.Info()
	}
	ev.Str("attempt_id", attemptID).
		Int("seq", n.Seq).
		Str("reason", string(n.Reason)).
		Int("remaining", n.Remaining).
		Msg("auth notification")
}

// TimerCountdown counts the email window down on a clock
type TimerCountdown struct {
	Clock ptime.Clock
	Spec  poll.CountdownSpec
}

// CheckEmailTimer emits Spec.From down to 0, one value per Spec.Every
func (t TimerCountdown) CheckEmailTimer(ctx context.Context) (<-chan int, error) {
	if err := t.Spec.Validate(); err != nil {
		return nil, err
	}
	ticks := poll.Ticker(ctx, t.Clock, t.Spec)
	out := make(chan int)
	go func() {
		defer close(out)
		for tk := range ticks {
			select {
			case out <- tk.Remaining:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
