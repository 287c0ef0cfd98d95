package account

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/supakit/handler"
	"github.com/dmitrymomot/supakit/pkg/binder"
	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/session"
	"github.com/dmitrymomot/supakit/pkg/ssr"
	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/ui"
)

// Service serves the sign-in, sign-up, email confirmation and sign-out routes.
type Service struct {
	supa    supabase.Config
	cfg     Config
	ssrOpts []ssr.Option
	log     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClientOptions passes options to ssr.NewServerClient.
func WithClientOptions(opts ...ssr.Option) Option {
	return func(s *Service) { s.ssrOpts = append(s.ssrOpts, opts...) }
}

// NewService creates the account service.
func NewService(supa supabase.Config, cfg Config, opts ...Option) *Service {
	s := &Service{supa: supa, cfg: cfg.withDefaults(), log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("account"))
	return s
}

// Handle returns a router serving only the account routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the account routes to r.
//
//	r.Group(func(r chi.Router) {
//		r.Use(session.Middleware(supaCfg))
//		account.NewService(supaCfg, accountCfg).Register(r)
//	})
func (s *Service) Register(r chi.Router) {
	r.Get(s.cfg.LoginPath, wrap[LoginRequest](s, s.loginPage, binder.Query()))
	r.Get("/signup", wrap[struct{}](s, s.signupPage))
	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/login", wrap[LoginRequest](s, s.login, binder.Query(), binder.Form()))
		auth.Post("/signup", wrap[SignupRequest](s, s.signup, binder.Form()))
		auth.Get("/confirm", wrap[ConfirmRequest](s, s.confirm, binder.Query()))
		auth.Post("/logout", wrap[struct{}](s, s.logout))
	})
}

// LoginRequest is the sign-in form. The page receives Next in its query.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next" query:"next"`
}

// SignupRequest is the sign-up form.
type SignupRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ConfirmRequest carries the parameters of an email link.
type ConfirmRequest struct {
	TokenHash string `query:"token_hash"`
	Type      string `query:"type"`
	Next      string `query:"next"`
}

func wrap[R any](s *Service, h handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[R](binders...),
		handler.WithErrorHandler[R](s.handleError),
	)
}

func (s *Service) handleError(w http.ResponseWriter, r *http.Request, err error) {
	handler.Error(w, r, s.log, err)
}

// client returns a server client bound to this exchange. Cookie writes fail
// silently once the response has been committed.
func (s *Service) client(w http.ResponseWriter, r *http.Request) (*supabase.Client, error) {
	opts := append([]ssr.Option{ssr.WithLogger(s.log)}, s.ssrOpts...)
	return ssr.NewServerClient(s.supa, cookie.NewHTTPStore(w, r), opts...)
}

func (s *Service) loginPage(w http.ResponseWriter, r *http.Request, req LoginRequest) error {
	next := s.safeNext(req.Next)
	if _, ok := session.UserFromContext(r.Context()); ok {
		return handler.Redirect(w, r, next)
	}
	return s.renderForm(w, r, http.StatusOK, s.loginForm(ui.AuthFormProps{Next: next}))
}

func (s *Service) signupPage(w http.ResponseWriter, r *http.Request, _ struct{}) error {
	return s.renderForm(w, r, http.StatusOK, s.signupForm(ui.AuthFormProps{}))
}

func (s *Service) login(w http.ResponseWriter, r *http.Request, req LoginRequest) error {
	ctx := r.Context()
	email := strings.TrimSpace(req.Email)
	next := s.safeNext(req.Next)
	form := ui.AuthFormProps{Email: email, Next: next}

	if email == "" {
		form.Error = "Enter your email address."
		return s.renderForm(w, r, http.StatusUnprocessableEntity, s.loginForm(form))
	}

	client, err := s.client(w, r)
	if err != nil {
		return err
	}

	if req.Password == "" {
		err := client.Auth().SignInWithOTP(ctx, supabase.OTPParams{
			Email:      email,
			RedirectTo: s.confirmURL(next),
		})
		if err != nil && !supabase.IsAuthError(err) {
			return err
		}
		// The same notice for unknown addresses keeps accounts from being enumerated.
		form.Notice = "Check your email for a sign-in link."
		return s.renderForm(w, r, http.StatusOK, s.loginForm(form))
	}

	if _, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: email, Password: req.Password}); err != nil {
		if msg, ok := authMessage(err); ok {
			form.Error = msg
			return s.renderForm(w, r, http.StatusBadRequest, s.loginForm(form))
		}
		return err
	}

	s.log.InfoContext(ctx, "signed in", slog.String("method", "password"))
	return handler.Redirect(w, r, next)
}

func (s *Service) signup(w http.ResponseWriter, r *http.Request, req SignupRequest) error {
	ctx := r.Context()
	email := strings.TrimSpace(req.Email)
	form := ui.AuthFormProps{Email: email}

	if email == "" || req.Password == "" {
		form.Error = "Enter an email address and a password."
		return s.renderForm(w, r, http.StatusUnprocessableEntity, s.signupForm(form))
	}

	client, err := s.client(w, r)
	if err != nil {
		return err
	}

	res, err := client.Auth().SignUp(ctx, supabase.SignUpParams{
		Email:      email,
		Password:   req.Password,
		RedirectTo: s.confirmURL(s.cfg.HomePath),
	})
	if err != nil {
		if msg, ok := authMessage(err); ok {
			form.Error = msg
			return s.renderForm(w, r, http.StatusBadRequest, s.signupForm(form))
		}
		return err
	}

	if res.Session == nil {
		form.Notice = "Check your email to confirm your account."
		return s.renderForm(w, r, http.StatusOK, s.loginForm(form))
	}
	return handler.Redirect(w, r, s.cfg.HomePath)
}

// confirm verifies the token hash from an email link and signs the user in.
func (s *Service) confirm(w http.ResponseWriter, r *http.Request, req ConfirmRequest) error {
	otpType := supabase.OTPType(req.Type)
	if otpType == "" {
		otpType = supabase.OTPEmail
	}
	next := s.safeNext(req.Next)

	if req.TokenHash == "" {
		return s.renderForm(w, r, http.StatusBadRequest, s.loginForm(ui.AuthFormProps{Error: "The confirmation link is incomplete."}))
	}

	client, err := s.client(w, r)
	if err != nil {
		return err
	}

	if _, err := client.Auth().VerifyOTP(r.Context(), supabase.VerifyOTPParams{Type: otpType, TokenHash: req.TokenHash}); err != nil {
		if supabase.IsAuthError(err) {
			return s.renderForm(w, r, http.StatusBadRequest, s.loginForm(ui.AuthFormProps{
				Error: "This link is invalid or has expired. Request a new one below.",
				Next:  next,
			}))
		}
		return err
	}

	s.log.InfoContext(r.Context(), "signed in", slog.String("method", "email_link"), slog.String("type", string(otpType)))
	return handler.Redirect(w, r, next)
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request, _ struct{}) error {
	client, err := s.client(w, r)
	if err != nil {
		return err
	}
	if err := client.Auth().SignOut(r.Context(), supabase.ScopeLocal); err != nil {
		s.log.WarnContext(r.Context(), "sign out failed", logger.Error(err))
	}
	return handler.Redirect(w, r, s.cfg.LoginPath)
}

func (s *Service) loginForm(p ui.AuthFormProps) ui.AuthFormProps {
	p.Title = "Sign in"
	p.Action = "/auth/login"
	p.Submit = "Sign in"
	p.PasswordOptional = true
	p.Alternate = &ui.Action{Label: "Create an account", Href: "/signup"}
	return p
}

func (s *Service) signupForm(p ui.AuthFormProps) ui.AuthFormProps {
	p.Title = "Create an account"
	p.Action = "/auth/signup"
	p.Submit = "Sign up"
	p.Alternate = &ui.Action{Label: "Already registered? Sign in", Href: s.cfg.LoginPath}
	return p
}

func (s *Service) renderForm(w http.ResponseWriter, r *http.Request, status int, p ui.AuthFormProps) error {
	form := ui.Card(ui.CardProps{Body: ui.AuthForm(p), Class: "ui-auth-card"})
	if handler.IsDataStar(r) {
		return handler.Templ(w, r, form, handler.WithTarget("#content"), handler.WithPatchMode(handler.PatchInner))
	}
	return handler.TemplStatus(w, r, status, ui.Page(ui.PageProps{Title: p.Title, Body: form}))
}

func (s *Service) confirmURL(next string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/auth/confirm?" + url.Values{"next": {next}}.Encode()
}

// safeNext keeps local paths only.
func (s *Service) safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return s.cfg.HomePath
	}
	return next
}

// authMessage returns the message of an auth rejection suitable for the form.
func authMessage(err error) (string, bool) {
	if !supabase.IsAuthError(err) {
		return "", false
	}
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "The request was rejected.", true
}
