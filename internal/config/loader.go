package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AUTOGRADE_CONFIG is set
//  3. env (prefix AUTOGRADE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("AUTOGRADE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: AUTOGRADE_BACKEND, AUTOGRADE_IMAGE_TAG, ...
	// Map env keys like AUTOGRADE_IMAGE_TAG -> image_tag (flat keys).
	// Preserve underscores to match koanf tags on the struct. AUTOGRADE_CONFIG
	// itself is the file pointer, not a field.
	envProvider := env.Provider("AUTOGRADE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "autograde_")
		if s == "config" {
			return ""
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no command could run with.
func (c *Config) Validate() error {
	if c.Backend != BackendDocker && c.Backend != BackendPodman {
		return fmt.Errorf("%w: backend must be %q or %q, got %q",
			ErrInvalidConfig, BackendDocker, BackendPodman, c.Backend)
	}
	if c.ImageTag == "" {
		return fmt.Errorf("%w: image_tag must not be empty", ErrInvalidConfig)
	}
	if c.ArchivePattern == "" {
		return fmt.Errorf("%w: archive_pattern must not be empty", ErrInvalidConfig)
	}
	if c.ResultsFile == "" {
		return fmt.Errorf("%w: results_file must not be empty", ErrInvalidConfig)
	}
	if c.NotebookExt == "" {
		return fmt.Errorf("%w: notebook_ext must not be empty", ErrInvalidConfig)
	}
	if c.CheckpointDir == "" {
		return fmt.Errorf("%w: checkpoint_dir must not be empty", ErrInvalidConfig)
	}
	return nil
}
