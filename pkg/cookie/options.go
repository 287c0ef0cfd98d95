package cookie

import (
	"net/http"
	"time"
)

// DefaultMaxAge is the lifetime applied to session cookies when none is
// configured: 400 days, the upper bound browsers honour.
const DefaultMaxAge = 400 * 24 * 60 * 60

// Options are the Set-Cookie attributes of a cookie. They are carried
// through the store layers untouched.
type Options struct {
	Expires     time.Time
	MaxAge      int
	Path        string
	Domain      string
	Secure      bool
	HttpOnly    bool
	SameSite    http.SameSite
	Partitioned bool
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

func WithDomain(domain string) Option {
	return func(o *Options) {
		o.Domain = domain
	}
}

func WithMaxAge(seconds int) Option {
	return func(o *Options) {
		o.MaxAge = seconds
	}
}

func WithSecure(secure bool) Option {
	return func(o *Options) {
		o.Secure = secure
	}
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) {
		o.HttpOnly = httpOnly
	}
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) {
		o.SameSite = sameSite
	}
}

// DefaultOptions returns the attributes used for auth session cookies.
// HttpOnly is off so that browser code can read the session too.
func DefaultOptions() Options {
	return Options{
		Path:     "/",
		MaxAge:   DefaultMaxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

// Apply returns a copy of o with opts applied. The receiver is not modified.
func (o Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
