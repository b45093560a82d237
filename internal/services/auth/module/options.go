package module

import (
	"time"

	"walletsync/internal/adapters/walletapi"
	"walletsync/internal/core/poll"
	"walletsync/internal/platform/config"
	perr "walletsync/internal/platform/errors"
	ptime "walletsync/internal/platform/time"
	"walletsync/internal/services/auth/service"
)

// Options controls the auth module
// A zero EmailWait falls back to a 120s window counted per second
type Options struct {
	Status        service.StatusPolicy
	EmailWait     poll.CountdownSpec
	WalletAPI     walletapi.Options
	MaxIterations int
	Clock         ptime.Clock
}

func defaultEmailWait() poll.CountdownSpec {
	return poll.CountdownSpec{From: 120, Every: time.Second}
}

// FromConfig reads AUTH_* and WALLET_API_* values
//
//	AUTH_STATUS_INTERVAL=2s
//	AUTH_STATUS_MAX_ATTEMPTS=60
//	AUTH_PBKDF2_MAX_ITERATIONS=1048576
//	WALLET_API_URL=https://wallet.example.com
//	WALLET_API_CODE=...
//	WALLET_API_TIMEOUT=10s
func FromConfig(cfg config.Conf) (Options, error) {
	a := cfg.Prefix("AUTH_")
	def := service.DefaultStatusPolicy()
	o := Options{
		Status: service.StatusPolicy{
			Interval:    a.MayDuration("STATUS_INTERVAL", def.Interval),
			MaxAttempts: a.MayInt("STATUS_MAX_ATTEMPTS", def.MaxAttempts),
		},
		MaxIterations: a.MayInt("PBKDF2_MAX_ITERATIONS", 0),
	}
	if o.Status.Interval <= 0 {
		return Options{}, perr.InvalidArgf("AUTH_STATUS_INTERVAL must be > 0, got %s", o.Status.Interval)
	}
	if o.Status.MaxAttempts < 1 {
		return Options{}, perr.InvalidArgf("AUTH_STATUS_MAX_ATTEMPTS must be >= 1, got %d", o.Status.MaxAttempts)
	}

	w := cfg.Prefix("WALLET_API_")
	o.WalletAPI = walletapi.Options{
		BaseURL:   w.MayString("URL", ""),
		APICode:   w.MayString("CODE", ""),
		UserAgent: w.MayString("USER_AGENT", "walletsync"),
		Timeout:   w.MayDuration("TIMEOUT", 10*time.Second),
	}
	return o, nil
}
