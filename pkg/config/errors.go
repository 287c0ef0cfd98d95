package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config.parse_failed")

	// ErrInvalidConfigType is returned when the target type is not a struct
	ErrInvalidConfigType = errors.New("config.invalid_type")

	// ErrLoadEnvFile is returned when a requested .env file cannot be read
	ErrLoadEnvFile = errors.New("config.env_file")
)
