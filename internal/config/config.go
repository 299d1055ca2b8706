// Package config loads and validates the gateway configuration.
//
// Configuration lives in a YAML file. Every loaded file is unified with an
// embedded CUE schema, so range errors (a zero timeout, a negative result
// cap) are caught at startup with a precise message instead of surfacing
// as odd behavior later.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/kuhumcst/DanNet-sub001/internal/gateway"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full gateway configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" json:"store"`
	Limits LimitsConfig `yaml:"limits" json:"limits"`
}

// StoreConfig locates the triple store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path" json:"path"`
}

// LimitsConfig carries the gateway's resource bounds in file-friendly
// units.
type LimitsConfig struct {
	MaxQueryLength int   `yaml:"max_query_length" json:"max_query_length"`
	MaxResults     int64 `yaml:"max_results" json:"max_results"`
	TimeoutMS      int   `yaml:"timeout_ms" json:"timeout_ms"`
}

// Default returns the production defaults. The store path is empty and
// must be supplied by the file or a flag.
func Default() Config {
	return Config{
		Limits: LimitsConfig{
			MaxQueryLength: 5000,
			MaxResults:     1000,
			TimeoutMS:      10000,
		},
	}
}

// Load reads a YAML configuration file, overlays it on the defaults, and
// validates the result against the embedded schema.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate unifies the configuration with the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GatewayLimits converts the file-friendly units into gateway limits.
func (c Config) GatewayLimits() gateway.Limits {
	return gateway.Limits{
		MaxQueryLength: c.Limits.MaxQueryLength,
		MaxResults:     c.Limits.MaxResults,
		Timeout:        time.Duration(c.Limits.TimeoutMS) * time.Millisecond,
	}
}
