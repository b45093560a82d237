package logger

import (
	"bytes"
	"context"
	"testing"

	kit "walletsync/internal/platform/testkit"
)

// the root logger is process wide, so a single test owns Init
func TestInit_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Service: "walletsync-test", Writer: &buf})

	Named("poll").Info().Int("attempt", 2).Msg("sample taken")
	ctx := WithRequest(context.Background(), "req-7", "att-1")
	C(ctx).Debug().Msg("state changed")
	C(context.Background()).Trace().Msg("dropped below level")

	out := buf.String()
	kit.MustContain(t, out, `"service":"walletsync-test"`)
	kit.MustContain(t, out, `"component":"poll"`)
	kit.MustContain(t, out, `"request_id":"req-7"`)
	kit.MustContain(t, out, `"attempt_id":"att-1"`)
	if bytes.Contains(buf.Bytes(), []byte("dropped below level")) {
		t.Fatalf("trace line should be filtered: %s", out)
	}

	// later calls are ignored
	var other bytes.Buffer
	Init(Options{Writer: &other})
	Get().Info().Msg("still root")
	if other.Len() != 0 {
		t.Fatalf("second Init must not replace the root logger")
	}
}

func TestWithAttempt_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	if WithAttempt(ctx, "") != ctx {
		t.Fatalf("empty attempt id should leave ctx untouched")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_CALLER", "true")
	o := FromEnv("walletsync-api")
	if o.Level != "warn" || o.Format != "json" || !o.Caller || o.Service != "walletsync-api" {
		t.Fatalf("unexpected options %+v", o)
	}
}
