package supabase

import (
	"time"

	"github.com/dmitrymomot/supakit/pkg/jwt"
)

// User is the auth server's view of an account.
type User struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Role             string         `json:"role,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	Identities       []Identity     `json:"identities,omitempty"`
}

// Provider returns the provider recorded in app metadata, "email" by default.
func (u *User) Provider() string {
	if p, ok := u.AppMetadata["provider"].(string); ok && p != "" {
		return p
	}
	return "email"
}

type Identity struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	LastSignInAt time.Time `json:"last_sign_in_at"`
}

// Session is the token pair issued by the auth server.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// ExpiresWithin reports whether the access token expires within margin of
// now. Without expires_at the token's exp claim is used.
func (s *Session) ExpiresWithin(now time.Time, margin time.Duration) bool {
	exp := s.ExpiresAt
	if exp == 0 {
		if claims, err := jwt.Decode(s.AccessToken); err == nil {
			exp = claims.ExpiresAt
		}
	}
	if exp == 0 {
		return false
	}
	return !now.Add(margin).Before(time.Unix(exp, 0))
}

// OTPType names what a one-time token verifies.
type OTPType string

const (
	OTPSignup      OTPType = "signup"
	OTPInvite      OTPType = "invite"
	OTPMagicLink   OTPType = "magiclink"
	OTPRecovery    OTPType = "recovery"
	OTPEmailChange OTPType = "email_change"
	OTPEmail       OTPType = "email"
)

// SignOutScope selects which sessions a sign-out revokes.
type SignOutScope string

const (
	ScopeGlobal SignOutScope = "global"
	ScopeLocal  SignOutScope = "local"
	ScopeOthers SignOutScope = "others"
)

type SignUpParams struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	Data       map[string]any `json:"data,omitempty"`
	RedirectTo string         `json:"-"`
}

type PasswordCredentials struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type OTPParams struct {
	Email      string         `json:"email"`
	CreateUser bool           `json:"create_user"`
	Data       map[string]any `json:"data,omitempty"`
	RedirectTo string         `json:"-"`
}

// VerifyOTPParams verifies either a token hash from an email link or an
// email/token pair typed in by the user.
type VerifyOTPParams struct {
	Type      OTPType `json:"type"`
	TokenHash string  `json:"token_hash,omitempty"`
	Email     string  `json:"email,omitempty"`
	Token     string  `json:"token,omitempty"`
}

type UserAttributes struct {
	Email    string         `json:"email,omitempty"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// AuthResponse carries the user and, when the server issued one, a session.
// Sign-ups that require email confirmation return no session.
type AuthResponse struct {
	User    *User
	Session *Session
}
