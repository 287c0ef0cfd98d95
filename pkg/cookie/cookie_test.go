package cookie_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/cookie"
)

func TestNew(t *testing.T) {
	t.Parallel()

	c := cookie.New("session", "v1", cookie.WithHTTPOnly(true), cookie.WithPath("/app"))

	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "v1", c.Value)
	assert.Equal(t, "/app", c.Options.Path)
	assert.True(t, c.Options.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.Options.SameSite)
	assert.Equal(t, cookie.DefaultMaxAge, c.Options.MaxAge)
	assert.False(t, c.IsRemoval())
}

func TestExpired(t *testing.T) {
	t.Parallel()

	c := cookie.Expired("session", cookie.DefaultOptions())
	assert.True(t, c.IsRemoval())
	assert.Empty(t, c.Value)
	assert.Contains(t, c.HTTP().String(), "Max-Age=0")
}

func TestSetRequestCookie(t *testing.T) {
	t.Parallel()

	t.Run("replaces existing value", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "a", Value: "1"})
		r.AddCookie(&http.Cookie{Name: "session", Value: "old"})

		cookie.SetRequestCookie(r, cookie.New("session", "new"))

		got, err := r.Cookie("session")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Value)
		assert.Len(t, r.Cookies(), 2)
	})

	t.Run("adds missing cookie", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		cookie.SetRequestCookie(r, cookie.New("session", "new"))

		got, err := r.Cookie("session")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Value)
	})

	t.Run("removal drops cookie", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "old"})

		cookie.SetRequestCookie(r, cookie.Expired("session", cookie.DefaultOptions()))

		_, err := r.Cookie("session")
		assert.ErrorIs(t, err, http.ErrNoCookie)
		assert.Empty(t, r.Header.Get("Cookie"))
	})
}

func TestSetResponseCookie(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("Set-Cookie", "other=1")
	cookie.SetResponseCookie(h, cookie.New("session", "first"))
	cookie.SetResponseCookie(h, cookie.New("session", "second", cookie.WithHTTPOnly(true)))

	values := h.Values("Set-Cookie")
	require.Len(t, values, 2)
	assert.Equal(t, "other=1", values[0])
	assert.True(t, strings.HasPrefix(values[1], "session=second"))
	assert.Contains(t, values[1], "HttpOnly")
}

func TestJar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	jar := cookie.NewJar(cookie.New("a", "1"), cookie.New("b", "2"))
	require.Equal(t, 2, jar.Len())

	require.NoError(t, jar.SetAll(ctx, []cookie.Cookie{
		cookie.New("a", "updated"),
		cookie.Expired("b", cookie.DefaultOptions()),
		cookie.New("c", "3"),
		cookie.Expired("missing", cookie.DefaultOptions()),
	}))

	all, err := jar.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "updated", all[0].Value)
	assert.Equal(t, "c", all[1].Name)

	all[0].Value = "mutated"
	got, ok := jar.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.Value, "GetAll must return a copy")
}

func TestHTTPStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads request cookies", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "v"})

		all, err := cookie.NewHTTPStore(httptest.NewRecorder(), r).GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "session", all[0].Name)
		assert.Equal(t, "v", all[0].Value)
	})

	t.Run("writes set-cookie headers", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		err := cookie.NewHTTPStore(w, r).SetAll(ctx, []cookie.Cookie{
			cookie.New("session", "new", cookie.WithHTTPOnly(true)),
		})
		require.NoError(t, err)

		res := w.Result()
		require.Len(t, res.Cookies(), 1)
		assert.Equal(t, "new", res.Cookies()[0].Value)
		assert.True(t, res.Cookies()[0].HttpOnly)
	})

	t.Run("refuses writes after headers are committed", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := cookie.TrackWrites(rec)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w.WriteHeader(http.StatusOK)

		err := cookie.NewHTTPStore(w, r).SetAll(ctx, []cookie.Cookie{cookie.New("session", "new")})
		assert.ErrorIs(t, err, cookie.ErrHeadersWritten)
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})
}

func TestReadOnlyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "v"})
	store := cookie.ReadOnly(r)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.NoError(t, store.SetAll(ctx, nil))
	assert.ErrorIs(t, store.SetAll(ctx, []cookie.Cookie{cookie.New("x", "y")}), cookie.ErrReadOnly)
}

func TestTrackWrites(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := cookie.TrackWrites(rec)
	assert.Same(t, w, cookie.TrackWrites(w))
	assert.False(t, w.Written())

	_, err := w.Write([]byte("hi"))
	require.NoError(t, err)
	assert.True(t, w.Written())
	assert.Same(t, http.ResponseWriter(rec), w.Unwrap())
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	opts := cookie.Config{Domain: "example.test", Secure: true, HttpOnly: true}.Options()
	assert.Equal(t, "/", opts.Path)
	assert.Equal(t, "example.test", opts.Domain)
	assert.Equal(t, cookie.DefaultMaxAge, opts.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, opts.SameSite)
	assert.True(t, opts.Secure)
	assert.True(t, opts.HttpOnly)

	assert.Equal(t, cookie.DefaultOptions(), cookie.DefaultConfig().Options())

	custom := cookie.Config{Path: "/app", MaxAge: 3600, SameSite: http.SameSiteStrictMode}.Options()
	assert.Equal(t, "/app", custom.Path)
	assert.Equal(t, 3600, custom.MaxAge)
	assert.Equal(t, http.SameSiteStrictMode, custom.SameSite)
	assert.Empty(t, custom.Domain)
	assert.False(t, custom.Secure)
}
