// Package config loads the YAML configuration for the tracemh-demo CLI: which
// built-in model to run, the sampler mode, and the MH/PT options to run it
// with. It follows the same DefaultConfig-plus-Load shape as chaos-utils'
// pkg/config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level demo configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Sampler SamplerConfig `yaml:"sampler"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects one of the built-in demo generative procedures and its
// parameters.
type ModelConfig struct {
	// Name is one of "biased-coin", "gaussian-posterior", or "bimodal".
	Name string `yaml:"name"`
	// Params holds model-specific numeric parameters, e.g. {"p": 0.3} for
	// biased-coin.
	Params map[string]float64 `yaml:"params"`
}

// SamplerConfig selects MH or parallel-tempered MH and its run parameters.
type SamplerConfig struct {
	// Mode is "mh" or "pt".
	Mode                 string        `yaml:"mode"`
	NSamples             int           `yaml:"n_samples"`
	Lag                  int           `yaml:"lag"`
	TimeBudget           time.Duration `yaml:"time_budget"`
	Temp                 float64       `yaml:"temp"`
	DepthBiasedVarSelect bool          `yaml:"depth_biased_var_select"`
	Seed                 int64         `yaml:"seed"`

	// Temps and TempSwapInterval apply only when Mode is "pt".
	Temps            []float64 `yaml:"temps"`
	TempSwapInterval int       `yaml:"temp_swap_interval"`
}

// LoggingConfig selects the verbosity and wire format of the demo's logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration the demo runs with when no config file is
// given: 2000 samples of the biased-coin model under plain MH.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:   "biased-coin",
			Params: map[string]float64{"p": 0.3},
		},
		Sampler: SamplerConfig{
			Mode:     "mh",
			NSamples: 2000,
			Lag:      1,
			Temp:     1,
			Seed:     1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads and parses a YAML config file, falling back to Default if path
// is empty or the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a configuration the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Model.Name {
	case "biased-coin", "gaussian-posterior", "bimodal":
	default:
		return fmt.Errorf("config: unknown model %q", c.Model.Name)
	}
	switch c.Sampler.Mode {
	case "mh":
	case "pt":
		if len(c.Sampler.Temps) < 2 {
			return fmt.Errorf("config: sampler.temps must have at least 2 entries in pt mode")
		}
	default:
		return fmt.Errorf("config: unknown sampler mode %q", c.Sampler.Mode)
	}
	if c.Sampler.NSamples <= 0 {
		return fmt.Errorf("config: sampler.n_samples must be positive")
	}
	return nil
}
