package ssr_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/ssr"
	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/supabase/supabasetest"
)

const (
	testEmail    = "ada@example.test"
	testPassword = "correct-horse"
)

func newServer(t *testing.T) *supabasetest.Server {
	t.Helper()
	srv := supabasetest.NewServer(t)
	srv.AddUser(testEmail, testPassword)
	return srv
}

// sessionCookies encodes s the way the client stores it.
func sessionCookies(t *testing.T, key string, s supabase.Session) []cookie.Cookie {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	chunks := cookie.Chunk(key, cookie.Encode(string(data)), cookie.MaxChunkSize)
	for i := range chunks {
		chunks[i].Options = cookie.DefaultOptions()
	}
	return chunks
}

func requestWith(cookies ...cookie.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

func decodeSession(t *testing.T, key string, cookies []cookie.Cookie) supabase.Session {
	t.Helper()
	raw, ok := cookie.Combine(key, cookies)
	require.True(t, ok, "session cookie %q not found", key)
	value, err := cookie.Decode(raw)
	require.NoError(t, err)
	var s supabase.Session
	require.NoError(t, json.Unmarshal([]byte(value), &s))
	return s
}

func TestNewBrowserClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("constructs without network", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)

		client, err := ssr.NewBrowserClient(srv.Config())
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Zero(t, srv.TotalCalls())
	})

	t.Run("missing configuration fails on first use", func(t *testing.T) {
		t.Parallel()
		_, err := ssr.NewBrowserClient(supabase.Config{URL: "https://x.test"})
		assert.ErrorIs(t, err, supabase.ErrMissingAnonKey)

		_, err = ssr.NewBrowserClient(supabase.Config{AnonKey: "abc123"})
		assert.ErrorIs(t, err, supabase.ErrMissingURL)
	})

	t.Run("session is kept in the jar", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)
		jar := cookie.NewJar()

		client, err := ssr.NewBrowserClient(srv.Config(), ssr.WithJar(jar))
		require.NoError(t, err)

		res, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)

		all, err := jar.GetAll(ctx)
		require.NoError(t, err)
		stored := decodeSession(t, srv.Config().StorageKey(), all)
		assert.Equal(t, res.Session.AccessToken, stored.AccessToken)

		require.NoError(t, client.Auth().SignOut(ctx, supabase.ScopeLocal))
		assert.Zero(t, jar.Len())
	})
}

func TestNewServerClient_ReadDoesNotModifyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)
	key := srv.Config().StorageKey()

	initial := append([]cookie.Cookie{cookie.New("theme", "dark")}, sessionCookies(t, key, srv.IssueSession(testEmail, time.Hour))...)
	initial = append(initial, cookie.New("locale", "en", cookie.WithHTTPOnly(true)))
	jar := cookie.NewJar(initial...)

	client, err := ssr.NewServerClient(srv.Config(), jar)
	require.NoError(t, err)

	session, err := client.Auth().GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)

	after, err := jar.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, initial, after)
	assert.Zero(t, srv.TotalCalls())
}

func TestNewServerClient_NilStore(t *testing.T) {
	t.Parallel()
	_, err := ssr.NewServerClient(supabase.Config{URL: "https://x.test", AnonKey: "abc123"}, nil)
	assert.ErrorIs(t, err, ssr.ErrNilStore)
}

func TestNewServerClient_IgnoresWriteFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("read-only store", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)
		key := srv.Config().StorageKey()
		seeded := srv.IssueSession(testEmail, 10*time.Second)
		r := requestWith(sessionCookies(t, key, seeded)...)
		before := r.Header.Get("Cookie")

		client, err := ssr.NewServerClient(srv.Config(), cookie.ReadOnly(r))
		require.NoError(t, err)

		session, err := client.Auth().GetSession(ctx)
		require.NoError(t, err, "write-back failure must not escape")
		require.NotNil(t, session)
		assert.NotEqual(t, seeded.AccessToken, session.AccessToken)
		assert.Equal(t, before, r.Header.Get("Cookie"), "no cookie may be applied")

		again, err := client.Auth().GetSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.AccessToken, again.AccessToken)
		assert.Equal(t, 1, srv.Calls("POST /auth/v1/token?grant_type=refresh_token"))
	})

	t.Run("response already committed", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t)
		key := srv.Config().StorageKey()
		r := requestWith(sessionCookies(t, key, srv.IssueSession(testEmail, 10*time.Second))...)
		rec := httptest.NewRecorder()
		w := cookie.TrackWrites(rec)
		w.WriteHeader(http.StatusOK)

		client, err := ssr.NewServerClient(srv.Config(), cookie.NewHTTPStore(w, r))
		require.NoError(t, err)

		user, err := client.Auth().GetUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, testEmail, user.Email)
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})
}

func TestNewServerClient_WritesWhenPossible(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)
	key := srv.Config().StorageKey()

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	client, err := ssr.NewServerClient(srv.Config(), cookie.NewHTTPStore(rec, r))
	require.NoError(t, err)

	res, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	written := make([]cookie.Cookie, 0)
	for _, c := range rec.Result().Cookies() {
		written = append(written, cookie.FromHTTP(c))
	}
	stored := decodeSession(t, key, written)
	assert.Equal(t, res.Session.AccessToken, stored.AccessToken)
}

func TestNewServerClient_GrowingSessionExpiresPlainCookie(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)
	key := srv.Config().StorageKey()

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/settings", nil)

	client, err := ssr.NewServerClient(srv.Config(), cookie.NewHTTPStore(rec, r))
	require.NoError(t, err)

	_, err = client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	bio := strings.Repeat("b", 4000)
	_, err = client.Auth().UpdateUser(ctx, supabase.UserAttributes{Data: map[string]any{"bio": bio}})
	require.NoError(t, err)

	// What the browser keeps after applying every Set-Cookie line.
	kept := make([]cookie.Cookie, 0)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			assert.Equal(t, key, c.Name)
			continue
		}
		kept = append(kept, cookie.FromHTTP(c))
	}
	_, plain := cookie.Find(kept, key)
	assert.False(t, plain, "unchunked cookie from the first write must be expired")

	stored := decodeSession(t, key, kept)
	require.NotNil(t, stored.User)
	assert.Equal(t, bio, stored.User.UserMetadata["bio"])
}

func TestCookieStorage_Chunking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)
	key := srv.Config().StorageKey()

	// Leftovers of an older, longer session: key.0 .. key.9 and a distant key.19.
	stale := make([]cookie.Cookie, 0, 11)
	for i := range 10 {
		stale = append(stale, cookie.Cookie{Name: fmt.Sprintf("%s.%d", key, i), Value: "x"})
	}
	stale = append(stale, cookie.Cookie{Name: key + ".19", Value: "x"})
	jar := cookie.NewJar(stale...)

	client, err := ssr.NewBrowserClient(srv.Config(), ssr.WithJar(jar), ssr.WithChunkSize(200))
	require.NoError(t, err)

	_, err = client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	all, err := jar.GetAll(ctx)
	require.NoError(t, err)
	for _, c := range all {
		assert.LessOrEqual(t, len(c.Value), 200)
	}
	_, hasStale := jar.Get(key + ".19")
	assert.False(t, hasStale)

	reader, err := ssr.NewServerClient(srv.Config(), jar, ssr.WithChunkSize(200))
	require.NoError(t, err)
	session, err := reader.Auth().GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, testEmail, session.User.Email)
}

func TestCookieStorage_MalformedCookie(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)
	key := srv.Config().StorageKey()

	jar := cookie.NewJar(cookie.New(key, cookie.EncodedPrefix+"%%%"))
	client, err := ssr.NewServerClient(srv.Config(), jar)
	require.NoError(t, err)

	session, err := client.Auth().GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestWithStorageKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)

	jar := cookie.NewJar()
	client, err := ssr.NewBrowserClient(srv.Config(), ssr.WithJar(jar), ssr.WithStorageKey("app-session"),
		ssr.WithCookieOptions(cookie.DefaultOptions().Apply(cookie.WithSecure(true))))
	require.NoError(t, err)

	_, err = client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	c, ok := jar.Get("app-session")
	require.True(t, ok)
	assert.True(t, c.Options.Secure)
}
