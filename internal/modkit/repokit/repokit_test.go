package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"walletsync/internal/platform/store"
)

type recorder struct {
	execs   []string
	failOn  string
	txCalls int
}

func (r *recorder) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.execs = append(r.execs, sql)
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return nil, errors.New("denied")
	}
	return nil, nil
}
func (r *recorder) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recorder) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (r *recorder) Tx(ctx context.Context, fn func(Queryer) error) error {
	r.txCalls++
	return fn(r)
}

func TestWithBeginHooks_RunsHooksFirst(t *testing.T) {
	rec := &recorder{}
	tx := WithBeginHooks(rec, StatementTimeout(30*time.Second), AdvisoryLock(7))

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "CREATE TABLE wallet_credentials ()")
		return err
	})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	want := []string{"SET LOCAL statement_timeout = 30000", "SELECT pg_advisory_xact_lock($1)", "CREATE TABLE wallet_credentials ()"}
	if strings.Join(rec.execs, "|") != strings.Join(want, "|") {
		t.Fatalf("exec order %q", rec.execs)
	}

	rec.execs = nil
	if _, err := tx.Exec(context.Background(), "SELECT 1"); err != nil || len(rec.execs) != 1 {
		t.Fatalf("plain exec must skip hooks: %q", rec.execs)
	}
}

func TestWithBeginHooks_HookErrorSkipsBody(t *testing.T) {
	rec := &recorder{failOn: "advisory"}
	called := false
	err := WithBeginHooks(rec, AdvisoryLock(1)).Tx(context.Background(), func(Queryer) error {
		called = true
		return nil
	})
	if err == nil || called || !strings.Contains(err.Error(), "advisory lock 1") {
		t.Fatalf("got err=%v called=%v", err, called)
	}
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return nil }))

	defer func() {
		err, _ := recover().(error)
		if err == nil || !strings.Contains(err.Error(), "pg down") {
			t.Fatalf("want wrapped panic, got %v", err)
		}
	}()
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg down") }))
}
