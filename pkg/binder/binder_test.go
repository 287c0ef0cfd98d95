package binder_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/binder"
)

type loginRequest struct {
	Email    string   `form:"email"`
	Password string   `form:"password"`
	Remember bool     `form:"remember"`
	Next     string   `form:"next" query:"next"`
	Scopes   []string `form:"scope"`
	Attempt  *int     `query:"attempt"`
	Internal string   `form:"-" query:"-"`
	Untagged string
}

func postForm(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/auth/login?next=/from-query&attempt=2", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	return r
}

func TestForm(t *testing.T) {
	t.Parallel()

	t.Run("urlencoded body", func(t *testing.T) {
		t.Parallel()
		r := postForm(url.Values{
			"email":    {"ada@example.test"},
			"password": {"secret"},
			"remember": {"on"},
			"scope":    {"read", "write"},
			"Internal": {"x"},
			"untagged": {"x"},
		})

		var req loginRequest
		require.NoError(t, binder.Form()(r, &req))
		assert.Equal(t, "ada@example.test", req.Email)
		assert.Equal(t, "secret", req.Password)
		assert.True(t, req.Remember)
		assert.Equal(t, []string{"read", "write"}, req.Scopes)
		assert.Empty(t, req.Next, "query values are not form values")
		assert.Empty(t, req.Internal)
		assert.Empty(t, req.Untagged)
	})

	t.Run("multipart body", func(t *testing.T) {
		t.Parallel()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("email", "ada@example.test"))
		require.NoError(t, mw.WriteField("next", "/reports"))
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/auth/login", &body)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		var req loginRequest
		require.NoError(t, binder.Form()(r, &req))
		assert.Equal(t, "ada@example.test", req.Email)
		assert.Equal(t, "/reports", req.Next)
	})

	t.Run("not applicable to GET", func(t *testing.T) {
		t.Parallel()
		var req loginRequest
		err := binder.Form()(httptest.NewRequest(http.MethodGet, "/login", nil), &req)
		assert.ErrorIs(t, err, binder.ErrNotApplicable)
	})

	t.Run("content type errors", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name        string
			contentType string
			want        error
		}{
			{"missing", "", binder.ErrMissingContentType},
			{"json", "application/json", binder.ErrUnsupportedMediaType},
			{"malformed", "text/;;", binder.ErrUnsupportedMediaType},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=a"))
				if tt.contentType != "" {
					r.Header.Set("Content-Type", tt.contentType)
				}
				var req loginRequest
				assert.ErrorIs(t, binder.Form()(r, &req), tt.want)
			})
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()
		var req loginRequest
		err := binder.Form()(postForm(url.Values{"remember": {"maybe"}}), &req)
		assert.ErrorIs(t, err, binder.ErrInvalidForm)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	var req loginRequest
	require.NoError(t, binder.Query()(postForm(url.Values{"email": {"ada@example.test"}}), &req))
	assert.Equal(t, "/from-query", req.Next)
	require.NotNil(t, req.Attempt)
	assert.Equal(t, 2, *req.Attempt)
	assert.Empty(t, req.Email, "form values are not query values")

	var bad loginRequest
	err := binder.Query()(httptest.NewRequest(http.MethodGet, "/?attempt=two", nil), &bad)
	assert.ErrorIs(t, err, binder.ErrInvalidQuery)
}

func TestQueryAndFormTogether(t *testing.T) {
	t.Parallel()

	r := postForm(url.Values{"email": {"ada@example.test"}, "next": {"/from-form"}})
	var req loginRequest
	require.NoError(t, binder.Query()(r, &req))
	require.NoError(t, binder.Form()(r, &req))
	assert.Equal(t, "/from-form", req.Next, "later binders win")
	assert.Equal(t, "ada@example.test", req.Email)
}

func TestInvalidTarget(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/?next=/x", nil)

	var s string
	assert.ErrorIs(t, binder.Query()(r, &s), binder.ErrInvalidTarget)
	assert.ErrorIs(t, binder.Query()(r, loginRequest{}), binder.ErrInvalidTarget)
	assert.ErrorIs(t, binder.Query()(r, (*loginRequest)(nil)), binder.ErrInvalidTarget)
}
