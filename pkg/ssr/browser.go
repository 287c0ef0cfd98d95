package ssr

import (
	"context"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// NewBrowserClient returns a client for code running outside any HTTP
// exchange. Its session cookies live in an in-memory jar (WithJar to share
// one), the counterpart of the browser's cookie storage. Construction only
// checks that both configuration values are present and never touches the
// network.
func NewBrowserClient(cfg supabase.Config, opts ...Option) (*supabase.Client, error) {
	o := buildOptions(opts)
	if o.jar == nil {
		o.jar = cookie.NewJar()
	}

	return newClient(cfg, o.jar, o, func(ctx context.Context, cookies []cookie.Cookie, err error) {
		o.logger.ErrorContext(ctx, "failed to store session cookies",
			logger.Component("ssr.browser"),
			logger.Cookies(cookieNames(cookies)...),
			logger.Error(err),
		)
	})
}
