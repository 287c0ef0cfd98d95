package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/supakit/handler"
	"github.com/dmitrymomot/supakit/modules/account"
	"github.com/dmitrymomot/supakit/modules/dashboard"
	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/httpserver"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/requestid"
	"github.com/dmitrymomot/supakit/pkg/session"
	"github.com/dmitrymomot/supakit/pkg/ssr"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

type deps struct {
	log      *slog.Logger
	supabase supabase.Config
	cookies  cookie.Options
	session  session.Config
	account  account.Config
	now      func() time.Time
}

func newRouter(d deps) (http.Handler, error) {
	// Readiness only needs the API key; it never touches a session.
	ready, err := supabase.New(d.supabase, supabase.WithLogger(d.log), supabase.WithTimeout(3*time.Second))
	if err != nil {
		return nil, err
	}
	if d.now == nil {
		d.now = time.Now
	}

	cookieOpts := ssr.WithCookieOptions(d.cookies)
	if d.account.LoginPath == "" {
		d.account.LoginPath = account.DefaultConfig().LoginPath
	}
	loginPath := d.account.LoginPath

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(d.log))
	r.Get("/readyz", httpserver.HealthHandler(d.log, ready.Auth().Health))

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(d.supabase,
			session.WithConfig(d.session),
			session.WithLogger(d.log),
			session.WithClientOptions(cookieOpts),
		))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if _, ok := session.UserFromContext(r.Context()); ok {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
		})

		account.NewService(d.supabase, d.account,
			account.WithLogger(d.log),
			account.WithClientOptions(cookieOpts),
		).Register(r)

		r.With(session.RequireUser(loginPath)).Mount("/dashboard", dashboard.NewService(
			dashboard.WithLogger(d.log),
			dashboard.WithClock(d.now),
		).Handle())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.Error(w, r, d.log, handler.NewError(http.StatusNotFound, "This page does not exist.", nil))
	})

	d.log.Debug("routes registered", logger.Component("router"))
	return r, nil
}
