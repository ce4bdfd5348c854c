package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is the optional file of RACETALLY_* variables read from the
// working directory.
const DotEnvFile = ".env"

// Env holds settings read from the environment. Command-line flags win
// over these.
type Env struct {
	DB        string `env:"RACETALLY_DB"`
	Config    string `env:"RACETALLY_CONFIG"`
	Format    string `env:"RACETALLY_FORMAT"`
	Lang      string `env:"RACETALLY_LANG"`
	Retention int    `env:"RACETALLY_RETENTION" envDefault:"-1"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// LoadDotEnv sets variables from the dotenv file at path. Variables already
// in the environment are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseEnvFrom loads Env from the given variables instead of the process
// environment.
func ParseEnvFrom(environ map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overlays environment settings onto cfg.
func (e Env) Apply(cfg Config) Config {
	if e.Retention >= 0 {
		cfg.Retention = e.Retention
	}
	return cfg
}
