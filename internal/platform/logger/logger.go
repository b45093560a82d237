// Package logger owns the process wide zerolog logger and its context helpers
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"walletsync/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger under a project name
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string
	Format  string // console or json
	Service string
	Writer  io.Writer
	Caller  bool
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_CALLER for the named service
func FromEnv(service string) Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "info"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: service,
		Caller:  rc.Bool("CALLER", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger, only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}

		c := zerolog.New(w).Level(lvl).With().Timestamp()
		if opt.Service != "" {
			c = c.Str("service", opt.Service)
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			c = c.Str("go_version", bi.GoVersion)
		}
		if opt.Caller {
			c = c.Caller()
		}
		l := c.Logger()
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv(""))
	return root.Load()
}

// Named returns a child logger tagged with a component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyAttemptID
)

// WithRequest tags ctx with the request id and, when known, a login attempt id
func WithRequest(ctx context.Context, reqID, attemptID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	return WithAttempt(ctx, attemptID)
}

// WithAttempt tags ctx with a login attempt id so every line of one handshake correlates
func WithAttempt(ctx context.Context, attemptID string) context.Context {
	if attemptID != "" {
		ctx = context.WithValue(ctx, keyAttemptID, attemptID)
	}
	return ctx
}

// C returns the root logger enriched with the ids carried by ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if s, _ := ctx.Value(keyRequestID).(string); s != "" {
		c = c.Str("request_id", s)
	}
	if s, _ := ctx.Value(keyAttemptID).(string); s != "" {
		c = c.Str("attempt_id", s)
	}
	l := c.Logger()
	return &l
}
