package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the stores care about
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
	pgTruncation       = "22001"
	pgBadText          = "22P02"
	pgSerialization    = "40001"
	pgDeadlock         = "40P01"
	pgLockNotAvailable = "55P03"
	pgReadOnlyTx       = "25006"
	pgCannotConnectNow = "57P03"
)

func pgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// FromPostgres wraps a store error with a code derived from its SQLSTATE
// Errors that are not from postgres are tagged ErrorCodeDB, nil stays nil
func FromPostgres(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if state, ok := pgCode(err); ok {
		switch state {
		case pgUniqueViolation:
			code = ErrorCodeDuplicateKey
		case pgNotNullViolation, pgCheckViolation:
			code = ErrorCodeValidation
		case pgTruncation, pgBadText:
			code = ErrorCodeInvalidArgument
		case pgReadOnlyTx, pgCannotConnectNow:
			code = ErrorCodeUnavailable
		}
	}
	return Wrap(err, code, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error is transient contention
// Context cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if state, ok := pgCode(err); ok {
		return state == pgSerialization || state == pgDeadlock || state == pgLockNotAvailable
	}
	s := strings.ToLower(Root(err).Error())
	for _, frag := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"canceling statement due to lock timeout",
	} {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
