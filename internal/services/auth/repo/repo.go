// Package repo provides the postgres credential store
package repo

import (
	"context"
	_ "embed"
	"strings"

	"walletsync/internal/modkit/repokit"
	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/store"
	dom "walletsync/internal/services/auth/domain"
)

//go:embed schema.sql
var schema string

// Repo is the credential store
type Repo interface {
	dom.CredentialStore
}

type (
	// PG is a Postgres implementation of the credential store
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// EnsureSchema creates the credential table when missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgres(err, "auth schema")
		}
	}
	return nil
}

// SaveIdentity upserts the wallet identity and forgets the PIN identifier
func (r *queries) SaveIdentity(ctx context.Context, id dom.StoredIdentity) error {
	if id.GUID == "" || id.SharedKey == "" {
		return perr.InvalidArgf("guid and shared key are required")
	}
	const sql = `
		INSERT INTO wallet_credentials (guid, shared_key, email_verified, pin_identifier, updated_at)
		VALUES ($1, $2, $3, NULL, now())
		ON CONFLICT (guid) DO UPDATE
		SET shared_key = EXCLUDED.shared_key,
		    email_verified = EXCLUDED.email_verified,
		    pin_identifier = NULL,
		    updated_at = now()`

	if err := store.ExecOne(ctx, r.q, sql, id.GUID, id.SharedKey, id.EmailVerified); err != nil {
		return perr.FromPostgres(err, "save identity %s", id.GUID)
	}
	return nil
}

// ClearCredentials drops everything stored for guid, a missing row is fine
func (r *queries) ClearCredentials(ctx context.Context, guid string) error {
	const sql = `DELETE FROM wallet_credentials WHERE guid = $1`
	if _, err := r.q.Exec(ctx, sql, guid); err != nil {
		return perr.FromPostgres(err, "clear credentials %s", guid)
	}
	return nil
}
