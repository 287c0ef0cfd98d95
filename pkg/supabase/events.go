package supabase

import "context"

// AuthEvent names a change of the stored session.
type AuthEvent string

const (
	EventSignedIn         AuthEvent = "SIGNED_IN"
	EventSignedOut        AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed   AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEvent = "USER_UPDATED"
	EventPasswordRecovery AuthEvent = "PASSWORD_RECOVERY"
)

// AuthListener observes session changes. It runs synchronously after the
// storage was updated; session is nil on sign-out.
type AuthListener func(ctx context.Context, event AuthEvent, session *Session)

type listener struct {
	id int
	fn AuthListener
}

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	id   int
	auth *Auth
}

// Unsubscribe stops further notifications. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.auth == nil {
		return
	}
	s.auth.removeListener(s.id)
}
