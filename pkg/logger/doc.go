// Package logger builds slog loggers with consistent defaults and attribute
// names.
//
// New returns a *slog.Logger whose handler is selected by options: JSON or
// text, a minimum level, static attributes, and ContextExtractor callbacks that
// pull request-scoped values (for example the request id) out of the context
// passed to the *Context logging methods.
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "dashboard"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "signed in", logger.UserID(user.ID))
//
// Attribute helpers return an empty slog.Attr for nil or empty input, which
// slog drops, so calls like log.Warn("refresh failed", logger.Error(err)) need
// no nil check.
package logger
