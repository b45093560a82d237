// Package repo provides the postgres status sources and the clickhouse outcome history
package repo

import (
	"context"
	_ "embed"
	"strings"

	"walletsync/internal/modkit/repokit"
	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/store"
	dom "walletsync/internal/services/convergence/domain"
)

//go:embed schema.sql
var schema string

// Repo is every status source the convergence service samples
type Repo interface {
	dom.TierSource
	dom.EligibilitySource
	dom.OrderSource
	dom.CardSource
}

type (
	// PG is a Postgres implementation of the status sources
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// EnsureSchema creates the status tables when missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "convergence schema")
		}
	}
	return nil
}

// Tiers returns every known tier of a user, an unknown user has no tiers
func (r *queries) Tiers(ctx context.Context, userID string) (dom.Tiers, error) {
	const sql = `
		SELECT tier, state
		FROM kyc_tiers
		WHERE user_id = $1`

	type pair struct{ level, state string }
	rows, err := store.Many(ctx, r.q, func(row store.Row) (pair, error) {
		var p pair
		err := row.Scan(&p.level, &p.state)
		return p, err
	}, sql, userID)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "tiers %s", userID)
	}
	out := make(dom.Tiers, len(rows))
	for _, p := range rows {
		out[dom.TierLevel(p.level)] = dom.TierState(p.state)
	}
	return out, nil
}

// EligibleForBuy reads the eligibility flag, no row means not eligible
func (r *queries) EligibleForBuy(ctx context.Context, userID string) (bool, error) {
	const sql = `
		SELECT COALESCE((SELECT eligible FROM buy_eligibility WHERE user_id = $1), false)`

	ok, err := store.Scalar[bool](ctx, r.q, sql, userID)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "eligibility %s", userID)
	}
	return ok, nil
}

// BuyOrder loads one order
func (r *queries) BuyOrder(ctx context.Context, orderID string) (dom.BuyOrder, error) {
	const sql = `
		SELECT id, user_id, state, fiat_currency, fiat_minor, crypto_currency, updated_at
		FROM buy_orders
		WHERE id = $1`

	o, err := store.One(ctx, r.q, func(row store.Row) (dom.BuyOrder, error) {
		var o dom.BuyOrder
		var state string
		err := row.Scan(&o.ID, &o.UserID, &state, &o.FiatCurrency, &o.FiatMinor, &o.CryptoCurrency, &o.UpdatedAt)
		o.State = normalizeOrder(state)
		return o, err
	}, sql, orderID)
	return o, sourceErr(err, "order", orderID)
}

// Card loads one payment card
func (r *queries) Card(ctx context.Context, cardID string) (dom.Card, error) {
	const sql = `
		SELECT id, user_id, status, last4, updated_at
		FROM payment_cards
		WHERE id = $1`

	c, err := store.One(ctx, r.q, func(row store.Row) (dom.Card, error) {
		var c dom.Card
		var status string
		err := row.Scan(&c.ID, &c.UserID, &status, &c.Last4, &c.UpdatedAt)
		c.Status = normalizeCard(status)
		return c, err
	}, sql, cardID)
	return c, sourceErr(err, "card", cardID)
}

// sourceErr keeps not found as is and marks the rest retryable
func sourceErr(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return perr.Newf(perr.ErrorCodeNotFound, "%s %s not found", what, id)
	default:
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s", what, id)
	}
}

func normalizeOrder(s string) dom.OrderState {
	switch st := dom.OrderState(strings.ToUpper(strings.TrimSpace(s))); st {
	case dom.OrderPendingConfirmation, dom.OrderPendingDeposit, dom.OrderDepositMatched,
		dom.OrderPendingExecution, dom.OrderFinished, dom.OrderFailed, dom.OrderCanceled:
		return st
	}
	return dom.OrderUnknown
}

func normalizeCard(s string) dom.CardStatus {
	switch st := dom.CardStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case dom.CardPending, dom.CardCreated, dom.CardActive, dom.CardBlocked, dom.CardExpired:
		return st
	}
	return dom.CardUnknown
}
