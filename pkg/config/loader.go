package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.Mutex
	cache = make(map[reflect.Type]any)

	dotenvOnce sync.Once
)

// LoadEnv loads the given .env files into the process environment. Variables
// already set are not overridden. Without arguments it loads ./.env.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadEnvFile, err)
	}
	return nil
}

// Load parses the environment into a value of type T. The first successful
// parse of each type is cached for the life of the process; later calls return
// the cached copy. A ./.env file is read once, if present, before the first parse.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any]() (T, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, ErrInvalidConfigType
	}

	dotenvOnce.Do(func() {
		// The file is optional.
		_ = godotenv.Load()
	})

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[typ]; ok {
		return cached.(T), nil
	}

	var v T
	if err := env.Parse(&v); err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	cache[typ] = v
	return v, nil
}

// MustLoad works like Load but panics on failure. Use it for configuration
// the process cannot start without.
func MustLoad[T any]() T {
	v, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: load %T: %v", v, err))
	}
	return v
}

// Reset clears the cache so the next Load re-reads the environment. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(cache)
}
