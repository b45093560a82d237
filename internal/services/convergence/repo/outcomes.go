package repo

import (
	"context"
	"time"

	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/store"
	dom "walletsync/internal/services/convergence/domain"
)

// OutcomesTable is the clickhouse table holding convergence history
//
//	CREATE TABLE convergence_outcomes (
//	    id String, kind LowCardinality(String), subject String, state LowCardinality(String),
//	    attempts UInt16, exhausted Bool, error String, at DateTime64(3, 'UTC')
//	) ENGINE = MergeTree ORDER BY (subject, at)
const OutcomesTable = "convergence_outcomes"

var outcomeCols = []string{"id", "kind", "subject", "state", "attempts", "exhausted", "error", "at"}

// Outcomes appends and reads convergence history in clickhouse
type Outcomes struct {
	ch store.Clickhouse
}

// NewOutcomes returns nil when ch is nil so callers can skip recording
func NewOutcomes(ch store.Clickhouse) *Outcomes {
	if ch == nil {
		return nil
	}
	return &Outcomes{ch: ch}
}

// Record appends one outcome, a nil Outcomes drops it
func (o *Outcomes) Record(ctx context.Context, rec dom.OutcomeRecord) error {
	if o == nil {
		return nil
	}
	row := []any{
		rec.ID,
		string(rec.Kind),
		rec.Subject,
		rec.State,
		uint16(min(rec.Attempts, 65535)),
		rec.Exhausted,
		rec.Error,
		rec.At.UTC(),
	}
	return o.ch.Insert(ctx, OutcomesTable, outcomeCols, [][]any{row})
}

// Recent lists the newest outcomes of subject
func (o *Outcomes) Recent(ctx context.Context, subject string, limit int) ([]dom.OutcomeRecord, error) {
	if o == nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "outcome history is not configured")
	}
	const sql = `
		SELECT id, kind, subject, state, attempts, exhausted, error, at
		FROM ` + OutcomesTable + `
		WHERE subject = ?
		ORDER BY at DESC
		LIMIT ?`

	rows, err := o.ch.Query(ctx, sql, subject, limit)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "outcome history")
	}
	defer rows.Close()

	var out []dom.OutcomeRecord
	for rows.Next() {
		var (
			rec      dom.OutcomeRecord
			kind     string
			attempts uint16
			at       time.Time
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Subject, &rec.State, &attempts, &rec.Exhausted, &rec.Error, &at); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "outcome history scan")
		}
		rec.Kind = dom.Kind(kind)
		rec.Attempts = int(attempts)
		rec.At = at
		out = append(out, rec)
	}
	return out, rows.Err()
}
