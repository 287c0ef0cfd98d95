// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing tagged structs. Each configuration
// type is parsed once and cached, so packages can ask for their config
// wherever they are constructed without re-reading the environment:
//
//	cfg := config.MustLoad[supabase.Config]()
//	client, err := ssr.NewServerClient(cfg, store)
//
// Required values are expressed with the `required` tag option where a
// missing value must stop the process; values that are only checked when first
// used (such as the backend credentials) are left optional and validated by
// their consumer.
package config
