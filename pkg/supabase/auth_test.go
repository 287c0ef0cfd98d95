package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/supabase/supabasetest"
)

const (
	testEmail    = "ada@example.test"
	testPassword = "correct-horse"
)

type recorder struct {
	events []supabase.AuthEvent
}

func (r *recorder) listen(_ context.Context, e supabase.AuthEvent, _ *supabase.Session) {
	r.events = append(r.events, e)
}

func setup(t *testing.T) (*supabasetest.Server, *supabase.Client, *supabase.MemoryStorage, *recorder) {
	t.Helper()
	srv := supabasetest.NewServer(t)
	srv.AddUser(testEmail, testPassword)

	storage := supabase.NewMemoryStorage()
	client, err := supabase.New(srv.Config(), supabase.WithStorage(storage))
	require.NoError(t, err)

	rec := &recorder{}
	client.Auth().OnAuthStateChange(rec.listen)
	return srv, client, storage, rec
}

func storeSession(t *testing.T, storage *supabase.MemoryStorage, key string, s supabase.Session) {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(context.Background(), key, string(data)))
}

func storedSession(t *testing.T, storage *supabase.MemoryStorage, key string) (supabase.Session, bool) {
	t.Helper()
	raw, ok, err := storage.GetItem(context.Background(), key)
	require.NoError(t, err)
	if !ok {
		return supabase.Session{}, false
	}
	var s supabase.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s, true
}

func TestAuth_SignInWithPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores session and emits signed in", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)

		res, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		require.NotNil(t, res.Session)
		assert.Equal(t, testEmail, res.User.Email)

		stored, ok := storedSession(t, storage, srv.Config().StorageKey())
		require.True(t, ok)
		assert.Equal(t, res.Session.AccessToken, stored.AccessToken)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventSignedIn}, rec.events)
	})

	t.Run("wrong password returns api error", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)

		_, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: "nope"})

		var apiErr *supabase.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "invalid_credentials", apiErr.Code)
		assert.Equal(t, "Invalid login credentials", apiErr.Message)
		assert.True(t, supabase.IsAuthError(err))

		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.False(t, ok)
		assert.Empty(t, rec.events)
	})
}

func TestAuth_GetSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		srv, client, _, _ := setup(t)

		session, err := client.Auth().GetSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Zero(t, srv.TotalCalls())
	})

	t.Run("valid session is returned without network", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		seeded := srv.IssueSession(testEmail, time.Hour)
		storeSession(t, storage, srv.Config().StorageKey(), seeded)

		session, err := client.Auth().GetSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, seeded.AccessToken, session.AccessToken)
		assert.Zero(t, srv.TotalCalls())
		assert.Empty(t, rec.events)
	})

	t.Run("expiring session is refreshed", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		seeded := srv.IssueSession(testEmail, 30*time.Second)
		storeSession(t, storage, srv.Config().StorageKey(), seeded)

		session, err := client.Auth().GetSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.NotEqual(t, seeded.AccessToken, session.AccessToken)
		assert.NotEqual(t, seeded.RefreshToken, session.RefreshToken)
		assert.Equal(t, 1, srv.Calls("POST /auth/v1/token?grant_type=refresh_token"))
		assert.Equal(t, []supabase.AuthEvent{supabase.EventTokenRefreshed}, rec.events)

		stored, ok := storedSession(t, storage, srv.Config().StorageKey())
		require.True(t, ok)
		assert.Equal(t, session.AccessToken, stored.AccessToken)
	})

	t.Run("rejected refresh token signs out", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), supabase.Session{
			AccessToken:  "expired.token.value",
			RefreshToken: "unknown",
			ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
		})

		session, err := client.Auth().GetSession(ctx)
		assert.Nil(t, session)
		assert.True(t, supabase.IsAuthError(err))

		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.False(t, ok)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventSignedOut}, rec.events)
	})

	t.Run("server fault keeps session", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		seeded := srv.IssueSession(testEmail, -time.Minute)
		storeSession(t, storage, srv.Config().StorageKey(), seeded)
		srv.FailRefresh(http.StatusInternalServerError)

		_, err := client.Auth().GetSession(ctx)
		require.Error(t, err)
		assert.False(t, supabase.IsAuthError(err))

		stored, ok := storedSession(t, storage, srv.Config().StorageKey())
		require.True(t, ok)
		assert.Equal(t, seeded.RefreshToken, stored.RefreshToken)
		assert.Empty(t, rec.events)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, _ := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), supabase.Session{
			AccessToken: "a.b.c",
			ExpiresAt:   time.Now().Add(-time.Minute).Unix(),
		})

		_, err := client.Auth().GetSession(ctx)
		assert.ErrorIs(t, err, supabase.ErrMissingRefreshToken)
	})

	t.Run("unreadable session is ignored", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, _ := setup(t)
		require.NoError(t, storage.SetItem(ctx, srv.Config().StorageKey(), "{not json"))

		session, err := client.Auth().GetSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestAuth_RefreshSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("refreshes a valid session on demand", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		seeded := srv.IssueSession(testEmail, time.Hour)
		storeSession(t, storage, srv.Config().StorageKey(), seeded)

		session, err := client.Auth().RefreshSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.NotEqual(t, seeded.AccessToken, session.AccessToken)
		assert.NotEqual(t, seeded.RefreshToken, session.RefreshToken)
		assert.Equal(t, 1, srv.Calls("POST /auth/v1/token?grant_type=refresh_token"))
		assert.Equal(t, []supabase.AuthEvent{supabase.EventTokenRefreshed}, rec.events)

		stored, ok := storedSession(t, storage, srv.Config().StorageKey())
		require.True(t, ok)
		assert.Equal(t, session.RefreshToken, stored.RefreshToken)
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		srv, client, _, rec := setup(t)

		session, err := client.Auth().RefreshSession(ctx)
		assert.ErrorIs(t, err, supabase.ErrNoSession)
		assert.Nil(t, session)
		assert.Zero(t, srv.TotalCalls())
		assert.Empty(t, rec.events)
	})
}

func TestAuth_GetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("without session", func(t *testing.T) {
		t.Parallel()
		_, client, _, _ := setup(t)

		_, err := client.Auth().GetUser(ctx)
		assert.ErrorIs(t, err, supabase.ErrNoSession)
	})

	t.Run("with session", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, _ := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), srv.IssueSession(testEmail, time.Hour))

		user, err := client.Auth().GetUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, testEmail, user.Email)
		assert.Equal(t, "email", user.Provider())
		assert.Equal(t, 1, srv.Calls("GET /auth/v1/user"))
	})

	t.Run("revoked token propagates", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, _ := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), supabase.Session{
			AccessToken:  "forged.token.value",
			RefreshToken: "r",
			ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		})

		_, err := client.Auth().GetUser(ctx)
		var apiErr *supabase.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	})
}

func TestAuth_SignOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clears session", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), srv.IssueSession(testEmail, time.Hour))

		require.NoError(t, client.Auth().SignOut(ctx, supabase.ScopeGlobal))

		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.False(t, ok)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventSignedOut}, rec.events)
		assert.Equal(t, 1, srv.Calls("POST /auth/v1/logout"))
	})

	t.Run("unknown session is not an error", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), supabase.Session{AccessToken: "gone.token.x", RefreshToken: "r"})

		require.NoError(t, client.Auth().SignOut(ctx, ""))
		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.False(t, ok)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventSignedOut}, rec.events)
	})

	t.Run("others scope keeps local session", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		storeSession(t, storage, srv.Config().StorageKey(), srv.IssueSession(testEmail, time.Hour))

		require.NoError(t, client.Auth().SignOut(ctx, supabase.ScopeOthers))
		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.True(t, ok)
		assert.Empty(t, rec.events)
	})
}

func TestAuth_SignUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("auto confirmed", func(t *testing.T) {
		t.Parallel()
		_, client, _, rec := setup(t)

		res, err := client.Auth().SignUp(ctx, supabase.SignUpParams{Email: "new@example.test", Password: "pw"})
		require.NoError(t, err)
		require.NotNil(t, res.Session)
		assert.Equal(t, "new@example.test", res.User.Email)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventSignedIn}, rec.events)
	})

	t.Run("confirmation required", func(t *testing.T) {
		t.Parallel()
		srv, client, storage, rec := setup(t)
		srv.RequireConfirmation(true)

		res, err := client.Auth().SignUp(ctx, supabase.SignUpParams{Email: "new@example.test", Password: "pw"})
		require.NoError(t, err)
		assert.Nil(t, res.Session)
		require.NotNil(t, res.User)
		assert.Equal(t, "new@example.test", res.User.Email)

		_, ok := storedSession(t, storage, srv.Config().StorageKey())
		assert.False(t, ok)
		assert.Empty(t, rec.events)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		_, client, _, _ := setup(t)

		_, err := client.Auth().SignUp(ctx, supabase.SignUpParams{Email: testEmail, Password: "pw"})
		var apiErr *supabase.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "user_already_exists", apiErr.Code)
	})
}

func TestAuth_VerifyOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recovery link", func(t *testing.T) {
		t.Parallel()
		srv, client, _, rec := setup(t)
		srv.AddOTP("hash-1", testEmail)

		res, err := client.Auth().VerifyOTP(ctx, supabase.VerifyOTPParams{Type: supabase.OTPRecovery, TokenHash: "hash-1"})
		require.NoError(t, err)
		require.NotNil(t, res.Session)
		assert.Equal(t, []supabase.AuthEvent{supabase.EventPasswordRecovery}, rec.events)
	})

	t.Run("expired link", func(t *testing.T) {
		t.Parallel()
		_, client, _, _ := setup(t)

		_, err := client.Auth().VerifyOTP(ctx, supabase.VerifyOTPParams{Type: supabase.OTPEmail, TokenHash: "missing"})
		assert.True(t, supabase.IsAuthError(err))
	})
}

func TestAuth_UpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, client, storage, rec := setup(t)
	storeSession(t, storage, srv.Config().StorageKey(), srv.IssueSession(testEmail, time.Hour))

	user, err := client.Auth().UpdateUser(ctx, supabase.UserAttributes{Data: map[string]any{"name": "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.UserMetadata["name"])
	assert.Equal(t, []supabase.AuthEvent{supabase.EventUserUpdated}, rec.events)

	stored, ok := storedSession(t, storage, srv.Config().StorageKey())
	require.True(t, ok)
	assert.Equal(t, "Ada", stored.User.UserMetadata["name"])
}

func TestAuth_OTPAndRecovery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, client, _, _ := setup(t)

	require.NoError(t, client.Auth().SignInWithOTP(ctx, supabase.OTPParams{Email: testEmail, RedirectTo: "https://app.test/auth/confirm"}))
	require.NoError(t, client.Auth().ResetPasswordForEmail(ctx, testEmail, ""))
	assert.Equal(t, 1, srv.Calls("POST /auth/v1/otp"))
	assert.Equal(t, 1, srv.Calls("POST /auth/v1/recover"))
}

func TestAuth_Health(t *testing.T) {
	t.Parallel()
	srv, client, _, _ := setup(t)

	require.NoError(t, client.Auth().Health(context.Background()))
	assert.Equal(t, 1, srv.Calls("GET /auth/v1/health"))

	bad, err := supabase.New(supabase.Config{URL: srv.URL, AnonKey: "wrong"})
	require.NoError(t, err)
	err = bad.Auth().Health(context.Background())
	var apiErr *supabase.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSubscription_Unsubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, client, _, rec := setup(t)

	other := &recorder{}
	sub := client.Auth().OnAuthStateChange(other.listen)
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	assert.Empty(t, other.events)
	assert.Len(t, rec.events, 1)
	assert.Equal(t, 1, srv.Calls("POST /auth/v1/token?grant_type=password"))
}

func TestSession_ExpiresWithin(t *testing.T) {
	t.Parallel()
	now := time.Now()

	assert.False(t, (&supabase.Session{}).ExpiresWithin(now, time.Minute))
	assert.True(t, (&supabase.Session{ExpiresAt: now.Add(30 * time.Second).Unix()}).ExpiresWithin(now, time.Minute))
	assert.False(t, (&supabase.Session{ExpiresAt: now.Add(time.Hour).Unix()}).ExpiresWithin(now, time.Minute))
}
