// Package logger builds *slog.Logger instances for storekit services.
//
// New creates a logger from functional options: output format (json or text),
// minimum level, static attributes, and ContextExtractor callbacks. Extractors
// run on every record and pull request-scoped values such as the request id or
// the active store slug out of context.Context.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "storefront"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "store selected", logger.Tenant(slug))
//
// Attribute helpers in attr.go keep key names consistent across packages.
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally. Discard returns a logger that drops everything; packages use
// it when no logger is injected.
package logger
