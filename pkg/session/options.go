package session

import (
	"log/slog"

	"github.com/dmitrymomot/supakit/pkg/logger"
	"github.com/dmitrymomot/supakit/pkg/ssr"
)

type options struct {
	skip    []string
	logger  *slog.Logger
	ssrOpts []ssr.Option
}

// Option configures Middleware.
type Option func(*options)

// WithConfig applies the settings of cfg.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.skip = append(o.skip, cfg.SkipPaths...)
	}
}

// WithSkipPaths excludes path prefixes from session handling.
func WithSkipPaths(prefixes ...string) Option {
	return func(o *options) {
		o.skip = append(o.skip, prefixes...)
	}
}

// WithLogger sets the logger. It is also handed to the middleware client.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClientOptions passes options to ssr.NewMiddlewareClient.
func WithClientOptions(opts ...ssr.Option) Option {
	return func(o *options) {
		o.ssrOpts = append(o.ssrOpts, opts...)
	}
}

func buildOptions(opts []Option) *options {
	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	o.ssrOpts = append([]ssr.Option{ssr.WithLogger(o.logger)}, o.ssrOpts...)
	return o
}
