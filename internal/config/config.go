// Package config loads session settings from YAML or CUE files and the
// environment.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
)

//go:embed schema.cue
var schemaCUE string

// Config is the settings a new session starts from.
type Config struct {
	RosterSize int         `json:"roster_size" yaml:"roster_size"`
	TotalGames int         `json:"total_games" yaml:"total_games"`
	Retention  int         `json:"retention" yaml:"retention"`
	Rules      score.Rules `json:"rules" yaml:"rules"`
}

// Default returns four players, thirty games, 300 retained rounds and the
// standard point tables.
func Default() Config {
	rc := score.DefaultRosterConfig()
	return Config{
		RosterSize: rc.RosterSize,
		TotalGames: rc.TotalGames,
		Retention:  ledger.DefaultRetention,
		Rules:      score.DefaultRules(),
	}
}

// Roster returns the roster part of the config.
func (c Config) Roster() score.RosterConfig {
	return score.RosterConfig{RosterSize: c.RosterSize, TotalGames: c.TotalGames}
}

// Format selects the config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", score.Newf(score.CodeConfigError, "unsupported config file %q: want .yaml, .yml or .cue", path)
	}
}

// Load reads the config file at path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result.
// Unknown fields are rejected.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, score.Newf(score.CodeConfigError, "parse yaml: %v", err)
		}
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename("config.cue"))
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return Config{}, cueConfigError("parse cue", err)
		}
		js, err := v.MarshalJSON()
		if err != nil {
			return Config{}, cueConfigError("export cue", err)
		}
		dec := json.NewDecoder(bytes.NewReader(js))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, score.Newf(score.CodeConfigError, "decode cue: %v", err)
		}
	default:
		return Config{}, score.Newf(score.CodeConfigError, "unknown config format %q", format)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the embedded CUE schema and the scoring
// package's own bounds.
func Validate(cfg Config) error {
	js, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.CompileBytes(js))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cueConfigError("config", err)
	}

	if err := cfg.Roster().Validate(); err != nil {
		return err
	}
	return cfg.Rules.Validate()
}

// cueConfigError flattens a CUE error list into a CONFIG_ERROR.
func cueConfigError(what string, err error) error {
	return score.Newf(score.CodeConfigError, "%s: %s", what, strings.TrimSpace(cueerrors.Details(err, nil)))
}
