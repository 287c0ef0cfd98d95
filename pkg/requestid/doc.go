// Package requestid tags every request with an id for log correlation.
//
// Middleware reuses a valid X-Request-ID header sent by the client or
// generates a UUID, stores it in the request context and echoes it back.
// Error pages show it as a support reference, and LoggerExtractor adds it to
// every log record:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
