package ssr

import (
	"log/slog"

	"github.com/dmitrymomot/supakit/pkg/cookie"
	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/supabase"
)

type options struct {
	cookieOpts cookie.Options
	storageKey string
	chunkSize  int
	jar        *cookie.Jar
	logger     *slog.Logger
	clientOpts []supabase.Option
}

// Option configures the client factories.
type Option func(*options)

// WithCookieOptions sets the attributes of the session cookies.
func WithCookieOptions(opts cookie.Options) Option {
	return func(o *options) { o.cookieOpts = opts }
}

// WithStorageKey overrides the session cookie name derived from the project URL.
func WithStorageKey(key string) Option {
	return func(o *options) { o.storageKey = key }
}

// WithChunkSize sets the largest cookie value before the session is split.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithJar makes the browser client keep its cookies in j.
func WithJar(j *cookie.Jar) Option {
	return func(o *options) { o.jar = j }
}

// WithLogger sets the logger used for cookie write failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClientOptions passes options through to supabase.New.
func WithClientOptions(opts ...supabase.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

func buildOptions(opts []Option) *options {
	o := &options{
		cookieOpts: cookie.DefaultOptions(),
		chunkSize:  cookie.MaxChunkSize,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
