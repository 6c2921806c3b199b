// Package logger builds structured slog loggers with automatic context
// attribute injection.
//
// Loggers created here wrap the chosen slog handler in a decorator that
// runs registered ContextExtractor functions on every log call, so
// request-scoped values such as the active tenant id appear on each
// record without the caller passing them explicitly:
//
//	log := logger.New(
//		logger.WithProduction("nabi"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "delivery rule updated") // carries tenant_id
package logger
