package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/jwt"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Unix()
	token, err := jwt.Encode(jwt.Claims{Subject: "user-1", ExpiresAt: exp, Email: "a@b.test", Role: "authenticated"})
	require.NoError(t, err)

	claims, err := jwt.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.test", claims.Email)
	assert.Equal(t, "authenticated", claims.Role)
	assert.Equal(t, time.Unix(exp, 0), claims.Expiry())
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", jwt.ErrInvalidToken},
		{"two segments", "a.b", jwt.ErrInvalidToken},
		{"empty payload", "a..c", jwt.ErrInvalidToken},
		{"bad base64", "a.!!!.c", jwt.ErrInvalidToken},
		{"not json", "a.bm90LWpzb24.c", jwt.ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := jwt.Decode(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClaims_ExpiresWithin(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	assert.False(t, jwt.Claims{}.ExpiresWithin(now, time.Hour))
	assert.True(t, jwt.Claims{ExpiresAt: now.Add(30 * time.Second).Unix()}.ExpiresWithin(now, 90*time.Second))
	assert.False(t, jwt.Claims{ExpiresAt: now.Add(time.Hour).Unix()}.ExpiresWithin(now, 90*time.Second))
	assert.True(t, jwt.Claims{ExpiresAt: now.Add(-time.Minute).Unix()}.ExpiresWithin(now, 0))
	assert.True(t, jwt.Claims{}.Expiry().IsZero())
}
