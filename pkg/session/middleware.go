package session

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/ssr"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

// Middleware refreshes the auth session before the next handler runs.
//
// For each request it builds an ssr.MiddlewareClient and resolves the user,
// which refreshes an expiring session and mirrors the new cookies onto the
// request and the response. The user (when signed in) and the client are put
// into the request context. The response writer passed on reports whether it
// was committed, so server clients created downstream skip cookie writes once
// headers are out.
func Middleware(cfg supabase.Config, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)
	log := o.logger.With(logger.Component("session"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped(r.URL.Path, o.skip) {
				next.ServeHTTP(w, r)
				return
			}

			tw := cookie.TrackWrites(w)
			mc, err := ssr.NewMiddlewareClient(cfg, r, tw, o.ssrOpts...)
			if err != nil {
				log.ErrorContext(r.Context(), "failed to create auth client", logger.Error(err))
				next.ServeHTTP(tw, r)
				return
			}

			ctx := WithClient(r.Context(), mc.Client)
			user, err := mc.Auth().GetUser(ctx)
			switch {
			case err == nil:
				ctx = WithUser(ctx, user)
			case errors.Is(err, supabase.ErrNoSession), errors.Is(err, supabase.ErrMissingRefreshToken):
				// anonymous
			case supabase.IsAuthError(err):
				log.DebugContext(ctx, "session rejected", logger.Error(err))
			default:
				log.WarnContext(ctx, "failed to resolve user", logger.Error(err))
			}

			next.ServeHTTP(tw, mc.Request().WithContext(ctx))
		})
	}
}

// RequireUser redirects requests without a signed-in user to loginPath with
// a 303. The requested path is passed in the "next" query parameter.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, LoginURL(loginPath, r.URL.RequestURI()), http.StatusSeeOther)
		})
	}
}

// LoginURL appends the return path to loginPath. Only local paths are kept.
func LoginURL(loginPath, returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || returnTo == loginPath {
		return loginPath
	}
	return loginPath + "?" + url.Values{"next": {returnTo}}.Encode()
}

func skipped(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
