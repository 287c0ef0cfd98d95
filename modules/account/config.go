package account

// Config holds the URLs the account flows redirect to.
type Config struct {
	// BaseURL is the public origin used in email links.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	// HomePath is where users land after signing in.
	HomePath string `env:"AUTH_HOME_PATH" envDefault:"/dashboard"`
	// LoginPath is the sign-in page.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080",
		HomePath:  "/dashboard",
		LoginPath: "/login",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.HomePath == "" {
		c.HomePath = d.HomePath
	}
	if c.LoginPath == "" {
		c.LoginPath = d.LoginPath
	}
	return c
}
