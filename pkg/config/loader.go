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
	cacheMu sync.Mutex
	cached  = make(map[reflect.Type]any)

	envFileOnce sync.Once
)

// Load parses environment variables into v based on its `env` and
// `envDefault` struct tags. A .env file in the working directory is loaded
// once per process if present; variables already set take precedence.
//
// Each configuration type is parsed once: later calls for the same type
// return the cached copy.
//
// Example:
//
//	type Config struct {
//		Store      string `env:"SLUG_STORE" envDefault:"mongo"`
//		Collection string `env:"SLUG_COLLECTION,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	envFileOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if c, ok := cached[key]; ok {
		*v = c.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cached[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
