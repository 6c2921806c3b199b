// Package tenantdb is the data-access chokepoint that makes tenant
// isolation unforgeable. Every persisted read and write in the backend
// goes through its Store, which enforces two independent layers:
//
// Interception: each operation is classified by its resource kind.
// Tenant-scoped kinds get the active scope's tenant id merged into the
// filter or payload, overwriting anything the caller supplied; global
// kinds (identity infrastructure) pass through untouched. A tenant-scoped
// operation with no active scope fails with ErrNoActiveScope before any
// database work.
//
// Session bridge: the rewritten operation runs inside a single
// transaction that first declares `app.current_tenant_id` and
// `app.current_role` as transaction-local settings and then executes the
// query on that same connection, activating the row-security policies
// installed by the schema migrations. A defect in the interceptor alone
// therefore cannot leak cross-tenant rows.
//
// Typical use:
//
//	store := tenantdb.NewStore(tenantdb.NewDB(pool), tenantdb.DefaultRegistry())
//
//	err := tenant.Run(ctx, tenantID, userID, func(ctx context.Context) error {
//		_, err := store.Create(ctx, tenantdb.KindCompanies, tenantdb.Record{"name": "Acme"})
//		return err
//	})
//
// The registry is the single source of truth for kind classification.
// Every new table must be registered in exactly one class; unregistered
// kinds are refused outright.
package tenantdb
