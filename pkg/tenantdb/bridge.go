package tenantdb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nabi-crm/nabi/pkg/pg"
	"github.com/nabi-crm/nabi/pkg/tenant"
)

// setIdentitySQL declares the session identity pair for database-side
// row-security policies. The `true` argument makes both settings
// transaction-local: they vanish at commit or rollback and never leak to
// other pooled connections.
const setIdentitySQL = `SELECT set_config('app.current_tenant_id', $1, true), set_config('app.current_role', $2, true)`

// setServiceRoleSQL deliberately leaves app.current_tenant_id unset: the
// policies' tenant comparison then evaluates against NULL and only the
// role clause can match, so the escalation is explicit in the session.
const setServiceRoleSQL = `SELECT set_config('app.current_role', $1, true)`

// protect runs fn with database-native row security active. For
// tenant-scoped kinds, fn executes inside one transaction whose
// connection carries the session identity variables; declaring identity
// and running the query are never split across two pooled connections.
// Service-role scopes also go through the bridge, declaring
// app.current_role so the forced row-security policies admit them.
// Global kinds carry no policies and are pure pass-through.
func (s *Store) protect(ctx context.Context, def Definition, fn func(q Querier) error) error {
	if def.Class == ClassGlobal {
		return fn(s.db)
	}

	identitySQL := setIdentitySQL
	var identityArgs []any
	if role := tenant.CurrentRole(ctx); role == tenant.RoleService {
		identitySQL = setServiceRoleSQL
		identityArgs = []any{string(role)}
	} else {
		tenantID, ok := tenant.CurrentTenantID(ctx)
		if !ok {
			// intercept already failed closed; keep the bridge fail-closed too.
			return ErrNoActiveScope
		}
		identityArgs = []any{tenantID, string(role)}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrTxBegin, err)
	}
	// Rollback after a successful commit is a no-op; this also releases
	// the connection when the caller's context is cancelled mid-flight.
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !pg.IsTxClosedError(rbErr) {
			s.log.ErrorContext(ctx, "session bridge rollback failed",
				slog.Any("error", rbErr), slog.String("kind", string(def.Kind)))
		}
	}()

	if _, err := tx.Exec(ctx, identitySQL, identityArgs...); err != nil {
		return errors.Join(ErrSessionIdentity, err)
	}

	// fn's error is returned unchanged so upstream retry and
	// observability logic sees the real cause.
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
