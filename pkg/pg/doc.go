// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool
// configured from environment variables, goose schema migrations
// (including the row-security policies the tenantdb session bridge
// activates), a health check, and error classification helpers.
//
// Typical startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
// The helpers use pgx.Tx-compatible pooling, which guarantees that all
// statements of one transaction run on one physical connection; the
// tenantdb session bridge depends on that property.
package pg
