package supabase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/supabase"
	"github.com/dmitrymomot/supakit/pkg/supabase/supabasetest"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     supabase.Config
		wantErr error
		wantKey string
	}{
		{
			name:    "hosted project",
			cfg:     supabase.Config{URL: "https://abcdefgh.supabase.co", AnonKey: "k"},
			wantKey: "sb-abcdefgh-auth-token",
		},
		{
			name:    "local instance",
			cfg:     supabase.Config{URL: "http://localhost:54321", AnonKey: "k"},
			wantKey: "sb-localhost-auth-token",
		},
		{
			name:    "example scenario",
			cfg:     supabase.Config{URL: "https://x.test", AnonKey: "abc123"},
			wantKey: "sb-x-auth-token",
		},
		{
			name:    "missing url",
			cfg:     supabase.Config{AnonKey: "k"},
			wantErr: supabase.ErrMissingURL,
			wantKey: "sb-local-auth-token",
		},
		{
			name:    "missing key",
			cfg:     supabase.Config{URL: "https://x.test", AnonKey: "  "},
			wantErr: supabase.ErrMissingAnonKey,
			wantKey: "sb-x-auth-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.cfg.Validate(), tt.wantErr)
			assert.Equal(t, tt.wantKey, tt.cfg.StorageKey())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("fails fast without configuration", func(t *testing.T) {
		t.Parallel()
		_, err := supabase.New(supabase.Config{})
		assert.ErrorIs(t, err, supabase.ErrMissingURL)
	})

	t.Run("no network on construction", func(t *testing.T) {
		t.Parallel()
		srv := supabasetest.NewServer(t)

		client, err := supabase.New(srv.Config())
		require.NoError(t, err)
		require.NotNil(t, client)
		require.NotNil(t, client.Auth())
		assert.Equal(t, srv.Config(), client.Config())
		assert.Zero(t, srv.TotalCalls())
	})

	t.Run("custom http client and headers", func(t *testing.T) {
		t.Parallel()
		srv := supabasetest.NewServer(t)
		rt := &headerRecorder{next: http.DefaultTransport}

		client, err := supabase.New(srv.Config(),
			supabase.WithHTTPClient(&http.Client{Transport: rt}),
			supabase.WithHeader("X-Tenant", "acme"),
		)
		require.NoError(t, err)
		require.NoError(t, client.Auth().Health(context.Background()))

		require.NotNil(t, rt.last)
		assert.Equal(t, "acme", rt.last.Get("X-Tenant"))
		assert.Equal(t, supabasetest.AnonKey, rt.last.Get("apikey"))
		assert.Equal(t, 1, srv.Calls("GET /auth/v1/health"))
	})
}

// headerRecorder keeps the headers of the last request it sent.
type headerRecorder struct {
	next http.RoundTripper
	last http.Header
}

func (h *headerRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	h.last = r.Header.Clone()
	return h.next.RoundTrip(r)
}

func TestClient_NewRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := supabasetest.NewServer(t)
	srv.AddUser("ada@example.test", "secret")

	client, err := supabase.New(srv.Config())
	require.NoError(t, err)

	anon, err := client.NewRequest(ctx)
	require.NoError(t, err)
	assert.Equal(t, supabasetest.AnonKey, anon.Token)

	res, err := client.Auth().SignInWithPassword(ctx, supabase.PasswordCredentials{Email: "ada@example.test", Password: "secret"})
	require.NoError(t, err)

	authed, err := client.NewRequest(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Session.AccessToken, authed.Token)

	resp, err := authed.Get("/auth/v1/user")
	require.NoError(t, err)
	assert.False(t, resp.IsError())
}
