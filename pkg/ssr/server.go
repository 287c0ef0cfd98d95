package ssr

import (
	"context"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// NewServerClient returns a client that reads the session with store.GetAll
// and writes refreshed session cookies back with store.SetAll.
//
// Write-back is best effort. Handlers that render after the response was
// committed, or code holding a read-only store, cannot set cookies; the
// failure is logged at debug level and dropped. The session middleware is
// responsible for the refresh that reaches the client in that case.
func NewServerClient(cfg supabase.Config, store cookie.Store, opts ...Option) (*supabase.Client, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := buildOptions(opts)

	return newClient(cfg, store, o, func(ctx context.Context, cookies []cookie.Cookie, err error) {
		// Not an error: the middleware persists the session for this request.
		o.logger.DebugContext(ctx, "session cookies not written from server context",
			logger.Component("ssr.server"),
			logger.Cookies(cookieNames(cookies)...),
			logger.Error(err),
		)
	})
}
