package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/supakit/handler"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/session"
	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/ui"
)

const (
	statsID   = "stats"
	statsPath = "/dashboard/stats"
)

// Service renders the signed-in user's overview. Its routes must sit behind
// session.Middleware and session.RequireUser.
type Service struct {
	log *slog.Logger
	now func() time.Time
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

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the dashboard service.
func NewService(opts ...Option) *Service {
	s := &Service{log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("dashboard"))
	return s
}

// Handle returns the routes: GET / for the page and GET /stats for the
// stat grid alone, which the page's refresh action patches in place.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.page)
	r.Get("/stats", s.stats)
	return r
}

func (s *Service) page(w http.ResponseWriter, r *http.Request) {
	user := session.MustUserFromContext(r.Context())
	grid := s.statGrid(r)

	body := ui.Card(ui.CardProps{
		Title:       "Overview",
		Description: "Your account at a glance.",
		Body:        grid,
		Action:      &ui.Action{Label: "Refresh", Get: statsPath},
	})
	page := ui.Page(ui.PageProps{Title: "Dashboard", UserEmail: user.Email, Body: body})

	if err := handler.TemplPartial(w, r, body, page, handler.WithTarget("#content"), handler.WithPatchMode(handler.PatchInner)); err != nil {
		s.log.ErrorContext(r.Context(), "failed to render dashboard", logger.Error(err))
	}
}

func (s *Service) stats(w http.ResponseWriter, r *http.Request) {
	if err := handler.Templ(w, r, s.statGrid(r), handler.WithTarget("#"+statsID)); err != nil {
		s.log.ErrorContext(r.Context(), "failed to render stats", logger.Error(err))
	}
}

// statGrid builds the stats of the current user. Failing to read the session
// yields an error state with a retry wired to the stats route.
func (s *Service) statGrid(r *http.Request) templ.Component {
	ctx := r.Context()
	user := session.MustUserFromContext(ctx)

	var sess *supabase.Session
	client, err := session.ClientFromContext(ctx)
	if err == nil {
		sess, err = client.Auth().GetSession(ctx)
	}
	if err != nil {
		s.log.WarnContext(ctx, "failed to read session", logger.Error(err))
		return ui.ErrorState(ui.ErrorStateProps{
			Message: "We could not load your session details.",
			Retry:   &ui.Action{Get: statsPath},
			ID:      statsID,
		})
	}

	return ui.StatGrid(ui.StatGridProps{ID: statsID, Columns: 4, Stats: s.userStats(user, sess)})
}

func (s *Service) userStats(user *supabase.User, sess *supabase.Session) []ui.StatProps {
	now := s.now()

	email := ui.StatProps{Label: "Email", Value: user.Email, Description: "Not confirmed", Variant: ui.VariantWarning}
	if user.EmailConfirmedAt != nil {
		email.Description = "Confirmed " + user.EmailConfirmedAt.Format("Jan 2, 2006")
		email.Variant = ui.VariantSuccess
	}

	member := ui.StatProps{Label: "Member for", Value: humanDuration(now.Sub(user.CreatedAt)), Description: "Since " + user.CreatedAt.Format("Jan 2, 2006")}

	lastSignIn := ui.StatProps{Label: "Last sign-in", Value: "Never"}
	if user.LastSignInAt != nil {
		lastSignIn.Value = humanDuration(now.Sub(*user.LastSignInAt)) + " ago"
	}

	expiry := ui.StatProps{Label: "Session", Value: "Unknown"}
	if sess != nil && sess.ExpiresAt > 0 {
		left := time.Unix(sess.ExpiresAt, 0).Sub(now)
		expiry.Value = humanDuration(left) + " left"
		expiry.Trend = ui.TrendDown
		expiry.Change = "renews automatically"
		if left < 5*time.Minute {
			expiry.Variant = ui.VariantWarning
		}
	}

	return []ui.StatProps{
		email,
		{Label: "Provider", Value: user.Provider()},
		member,
		lastSignIn,
		expiry,
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 48*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
