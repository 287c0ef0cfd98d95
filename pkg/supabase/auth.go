package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/supakit/pkg/logger"
)

// Auth talks to the auth server and keeps the resulting session in Storage.
type Auth struct {
	rest    *resty.Client
	apiKey  string
	storage Storage
	key     string
	margin  time.Duration
	now     func() time.Time
	log     *slog.Logger

	refreshMu sync.Mutex

	mu        sync.Mutex
	listeners []listener
	nextID    int
}

// OnAuthStateChange registers fn for session changes made through this handle.
func (a *Auth) OnAuthStateChange(fn AuthListener) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.listeners = append(a.listeners, listener{id: a.nextID, fn: fn})
	return &Subscription{id: a.nextID, auth: a}
}

func (a *Auth) removeListener(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.listeners {
		if l.id == id {
			a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
			return
		}
	}
}

func (a *Auth) emit(ctx context.Context, event AuthEvent, session *Session) {
	a.mu.Lock()
	snapshot := make([]listener, len(a.listeners))
	copy(snapshot, a.listeners)
	a.mu.Unlock()

	a.log.DebugContext(ctx, "auth state changed", logger.Event(string(event)))
	for _, l := range snapshot {
		l.fn(ctx, event, session)
	}
}

// SignUp creates an account. When the project requires email confirmation
// the response carries no session and nothing is stored.
func (a *Auth) SignUp(ctx context.Context, params SignUpParams) (*AuthResponse, error) {
	req := a.rest.R().SetContext(ctx).SetAuthToken(a.apiKey).SetBody(params)
	if params.RedirectTo != "" {
		req.SetQueryParam("redirect_to", params.RedirectTo)
	}
	resp, err := req.Post("/auth/v1/signup")
	if err != nil {
		return nil, fmt.Errorf("supabase: sign up: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	var session Session
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("supabase: decode sign up response: %w", err)
	}
	if session.AccessToken == "" {
		var user User
		if err := json.Unmarshal(resp.Body(), &user); err != nil {
			return nil, fmt.Errorf("supabase: decode sign up response: %w", err)
		}
		return &AuthResponse{User: &user}, nil
	}

	if err := a.saveSession(ctx, &session); err != nil {
		return nil, err
	}
	a.emit(ctx, EventSignedIn, &session)
	return &AuthResponse{User: session.User, Session: &session}, nil
}

// SignInWithPassword exchanges email (or phone) and password for a session.
func (a *Auth) SignInWithPassword(ctx context.Context, creds PasswordCredentials) (*AuthResponse, error) {
	session, err := a.token(ctx, "password", creds)
	if err != nil {
		return nil, err
	}
	if err := a.saveSession(ctx, session); err != nil {
		return nil, err
	}
	a.emit(ctx, EventSignedIn, session)
	return &AuthResponse{User: session.User, Session: session}, nil
}

// SignInWithOTP sends a magic link or one-time code to the email address.
func (a *Auth) SignInWithOTP(ctx context.Context, params OTPParams) error {
	req := a.rest.R().SetContext(ctx).SetAuthToken(a.apiKey).SetBody(params)
	if params.RedirectTo != "" {
		req.SetQueryParam("redirect_to", params.RedirectTo)
	}
	resp, err := req.Post("/auth/v1/otp")
	if err != nil {
		return fmt.Errorf("supabase: send otp: %w", err)
	}
	if resp.IsError() {
		return parseAPIError(resp)
	}
	return nil
}

// VerifyOTP completes an email link or code flow and stores the session.
func (a *Auth) VerifyOTP(ctx context.Context, params VerifyOTPParams) (*AuthResponse, error) {
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(params).
		Post("/auth/v1/verify")
	if err != nil {
		return nil, fmt.Errorf("supabase: verify otp: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	session, err := a.decodeSession(resp)
	if err != nil {
		return nil, err
	}
	if err := a.saveSession(ctx, session); err != nil {
		return nil, err
	}

	event := EventSignedIn
	if params.Type == OTPRecovery {
		event = EventPasswordRecovery
	}
	a.emit(ctx, event, session)
	return &AuthResponse{User: session.User, Session: session}, nil
}

// ResetPasswordForEmail sends a password recovery email.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	req := a.rest.R().SetContext(ctx).SetAuthToken(a.apiKey).SetBody(map[string]string{"email": email})
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	resp, err := req.Post("/auth/v1/recover")
	if err != nil {
		return fmt.Errorf("supabase: recover: %w", err)
	}
	if resp.IsError() {
		return parseAPIError(resp)
	}
	return nil
}

// Health checks that the auth server is reachable and answering.
func (a *Auth) Health(ctx context.Context) error {
	resp, err := a.rest.R().SetContext(ctx).SetAuthToken(a.apiKey).Get("/auth/v1/health")
	if err != nil {
		return fmt.Errorf("supabase: health: %w", err)
	}
	if resp.IsError() {
		return parseAPIError(resp)
	}
	return nil
}

// GetSession returns the stored session, refreshing it when the access token
// expires within the configured margin. A nil session with a nil error means
// nobody is signed in.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	session, err := a.loadSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	if !session.ExpiresWithin(a.now(), a.margin) {
		return session, nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	current, err := a.loadSession(ctx)
	if err != nil || current == nil {
		return nil, err
	}
	if current.RefreshToken != session.RefreshToken && !current.ExpiresWithin(a.now(), a.margin) {
		return current, nil
	}
	return a.refresh(ctx, current.RefreshToken)
}

// RefreshSession forces a token refresh using the stored refresh token.
func (a *Auth) RefreshSession(ctx context.Context) (*Session, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	session, err := a.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return a.refresh(ctx, session.RefreshToken)
}

// GetUser asks the auth server for the user of the current session. Unlike
// the stored session this value can be trusted.
func (a *Auth) GetUser(ctx context.Context) (*User, error) {
	session, err := a.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return a.GetUserByToken(ctx, session.AccessToken)
}

// GetUserByToken resolves the user owning accessToken.
func (a *Auth) GetUserByToken(ctx context.Context, accessToken string) (*User, error) {
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("supabase: get user: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	var user User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("supabase: decode user: %w", err)
	}
	return &user, nil
}

// UpdateUser changes attributes of the signed-in user and stores the
// returned user in the session.
func (a *Auth) UpdateUser(ctx context.Context, attrs UserAttributes) (*User, error) {
	session, err := a.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}

	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(session.AccessToken).
		SetBody(attrs).
		Put("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("supabase: update user: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	var user User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("supabase: decode user: %w", err)
	}

	session.User = &user
	if err := a.saveSession(ctx, session); err != nil {
		return nil, err
	}
	a.emit(ctx, EventUserUpdated, session)
	return &user, nil
}

// SignOut revokes the session on the server and always clears it locally,
// except for ScopeOthers which keeps the current session.
// A session the server no longer knows is not an error.
func (a *Auth) SignOut(ctx context.Context, scope SignOutScope) error {
	if scope == "" {
		scope = ScopeGlobal
	}

	session, err := a.loadSession(ctx)
	if err != nil {
		return err
	}

	if session != nil {
		resp, err := a.rest.R().
			SetContext(ctx).
			SetAuthToken(session.AccessToken).
			SetQueryParam("scope", string(scope)).
			Post("/auth/v1/logout")
		if err != nil {
			return fmt.Errorf("supabase: sign out: %w", err)
		}
		if resp.IsError() && !isSessionGone(resp.StatusCode()) {
			return parseAPIError(resp)
		}
	}

	if scope == ScopeOthers {
		return nil
	}
	if err := a.removeSession(ctx); err != nil {
		return err
	}
	a.emit(ctx, EventSignedOut, nil)
	return nil
}

func isSessionGone(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound
}

// refresh must be called with refreshMu held.
func (a *Auth) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		if err := a.removeSession(ctx); err != nil {
			return nil, err
		}
		a.emit(ctx, EventSignedOut, nil)
		return nil, ErrMissingRefreshToken
	}

	session, err := a.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		// Keep the session on transport errors and server faults so a later
		// request can retry; a rejected refresh token ends the session.
		if IsAuthError(err) {
			a.log.InfoContext(ctx, "refresh token rejected, signing out", logger.Error(err))
			if rmErr := a.removeSession(ctx); rmErr != nil {
				return nil, errors.Join(err, rmErr)
			}
			a.emit(ctx, EventSignedOut, nil)
		}
		return nil, err
	}

	if err := a.saveSession(ctx, session); err != nil {
		return nil, err
	}
	a.emit(ctx, EventTokenRefreshed, session)
	return session, nil
}

func (a *Auth) token(ctx context.Context, grantType string, body any) (*Session, error) {
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetQueryParam("grant_type", grantType).
		SetBody(body).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("supabase: token (%s): %w", grantType, err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}
	return a.decodeSession(resp)
}

func (a *Auth) decodeSession(resp *resty.Response) (*Session, error) {
	var session Session
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("supabase: decode session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrInvalidSession
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = a.now().Unix() + session.ExpiresIn
	}
	return &session, nil
}

func (a *Auth) loadSession(ctx context.Context) (*Session, error) {
	raw, ok, err := a.storage.GetItem(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("supabase: read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.AccessToken == "" {
		a.log.WarnContext(ctx, "ignoring unreadable stored session", logger.Error(err))
		return nil, nil
	}
	return &session, nil
}

func (a *Auth) saveSession(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("supabase: encode session: %w", err)
	}
	if err := a.storage.SetItem(ctx, a.key, string(data)); err != nil {
		return fmt.Errorf("supabase: store session: %w", err)
	}
	return nil
}

func (a *Auth) removeSession(ctx context.Context) error {
	if err := a.storage.RemoveItem(ctx, a.key); err != nil {
		return fmt.Errorf("supabase: remove session: %w", err)
	}
	return nil
}
