package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

type (
	userContextKey   struct{}
	clientContextKey struct{}
)

// WithUser adds the signed-in user to the context.
func WithUser(ctx context.Context, user *supabase.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user resolved by Middleware.
func UserFromContext(ctx context.Context) (*supabase.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*supabase.User)
	return user, ok && user != nil
}

// MustUserFromContext returns the user or panics. Use behind RequireUser.
func MustUserFromContext(ctx context.Context) *supabase.User {
	user, ok := UserFromContext(ctx)
	if !ok {
		panic("session: user not found in context")
	}
	return user
}

// WithClient adds the request's auth client to the context.
func WithClient(ctx context.Context, client *supabase.Client) context.Context {
	return context.WithValue(ctx, clientContextKey{}, client)
}

// ClientFromContext returns the client Middleware created for the request.
func ClientFromContext(ctx context.Context) (*supabase.Client, error) {
	client, ok := ctx.Value(clientContextKey{}).(*supabase.Client)
	if !ok || client == nil {
		return nil, ErrNoClient
	}
	return client, nil
}

// LoggerExtractor returns a logger.ContextExtractor adding the user id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if user, ok := UserFromContext(ctx); ok {
			return logger.UserID(user.ID), true
		}
		return slog.Attr{}, false
	}
}
