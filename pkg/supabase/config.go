package supabase

import (
	"net/url"
	"strings"
)

// Config holds the two process-wide values needed to reach the backend.
// Both are public: the anon key only identifies the project.
type Config struct {
	URL     string `env:"NEXT_PUBLIC_SUPABASE_URL"`
	AnonKey string `env:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`
}

// Validate checks presence only. Malformed URLs surface on the first request.
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrMissingURL
	}
	if strings.TrimSpace(c.AnonKey) == "" {
		return ErrMissingAnonKey
	}
	return nil
}

// ProjectRef returns the first label of the endpoint host, which names the
// project on hosted deployments ("abc" for https://abc.supabase.co).
func (c Config) ProjectRef() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.Hostname() == "" {
		return "local"
	}
	host, _, _ := strings.Cut(u.Hostname(), ".")
	return host
}

// StorageKey is the default key the auth session is stored under.
func (c Config) StorageKey() string {
	return "sb-" + c.ProjectRef() + "-auth-token"
}

func (c Config) baseURL() string {
	return strings.TrimRight(c.URL, "/")
}
