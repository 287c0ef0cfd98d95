package cookie

import "net/http"

// Config holds the session cookie attributes that can be set from the environment.
type Config struct {
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int           `env:"COOKIE_MAX_AGE" envDefault:"34560000"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"false"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode
}

// DefaultConfig returns default cookie configuration
func DefaultConfig() Config {
	d := DefaultOptions()
	return Config{
		Path:     d.Path,
		MaxAge:   d.MaxAge,
		SameSite: d.SameSite,
	}
}

// Options converts the config into cookie options on top of DefaultOptions.
// Zero values of Path, Domain, MaxAge and SameSite keep the defaults.
func (c Config) Options() Options {
	opts := []Option{WithSecure(c.Secure), WithHTTPOnly(c.HttpOnly)}
	if c.Path != "" {
		opts = append(opts, WithPath(c.Path))
	}
	if c.Domain != "" {
		opts = append(opts, WithDomain(c.Domain))
	}
	if c.MaxAge != 0 {
		opts = append(opts, WithMaxAge(c.MaxAge))
	}
	if c.SameSite != 0 {
		opts = append(opts, WithSameSite(c.SameSite))
	}
	return DefaultOptions().Apply(opts...)
}
