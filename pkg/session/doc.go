// Package session keeps the auth session of every request fresh.
//
// Middleware runs before the application handlers. It creates a middleware
// auth client bound to the request and response, asks the backend for the
// current user and, when the access token is about to expire, refreshes the
// session. Refreshed cookies are written to both the inbound request, so
// handlers down the chain see them, and the outbound response, so the browser
// stores them.
//
//	r := chi.NewRouter()
//	r.Use(session.Middleware(cfg, session.WithLogger(log), session.WithSkipPaths("/static/")))
//	r.With(session.RequireUser("/login")).Get("/dashboard", dashboard)
//
// Handlers read the outcome from the context:
//
//	user, ok := session.UserFromContext(r.Context())
//	client, err := session.ClientFromContext(r.Context())
//
// Requests without a session pass through untouched. Backend failures are
// logged and the request continues anonymously.
package session
