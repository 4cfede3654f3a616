package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	sim "github.com/wnowak10/syst/sim"
)

// envOverrides are optional SCHOOLSIM_* environment variables. Unset
// variables leave the pointer nil.
type envOverrides struct {
	Seed     *int64  `env:"SCHOOLSIM_SEED"`
	Years    *int    `env:"SCHOOLSIM_YEARS"`
	Runs     *int    `env:"SCHOOLSIM_RUNS"`
	DBPath   *string `env:"SCHOOLSIM_DB"`
	LogLevel *string `env:"SCHOOLSIM_LOG"`
}

// LoadConfig reads a YAML run configuration on top of sim.DefaultConfig().
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// parseEnv loads SCHOOLSIM_* overrides from the environment.
func parseEnv() (envOverrides, error) {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// apply copies every run-configuration override that was set onto cfg.
func (o envOverrides) apply(cfg *sim.Config) {
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.Years != nil {
		cfg.Years = *o.Years
	}
	if o.Runs != nil {
		cfg.Runs = *o.Runs
	}
}

// MarshalConfig renders cfg as YAML.
func MarshalConfig(cfg sim.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
