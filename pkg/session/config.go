package session

// Config holds session middleware configuration.
type Config struct {
	// SkipPaths are path prefixes served without touching the session.
	SkipPaths []string `env:"SESSION_SKIP_PATHS" envSeparator:"," envDefault:"/healthz,/static/"`
}

// DefaultConfig returns the default middleware configuration.
func DefaultConfig() Config {
	return Config{
		SkipPaths: []string{"/healthz", "/static/"},
	}
}
