package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "AVALIECE_"
	EnvFile   = "AVALIECE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AVALIECE_CONFIG is set
//  3. env (prefix AVALIECE_; "__" descends into sections)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// AVALIECE_LOG_LEVEL -> log_level, AVALIECE_DATASET__PATH -> dataset.path
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvFile {
			return ""
		}
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Dataset.Path) == "":
		return fmt.Errorf("%w: dataset.path must not be empty", ErrInvalidConfig)
	case utf8.RuneCountInString(c.Dataset.Delimiter) != 1:
		return fmt.Errorf("%w: dataset.delimiter must be a single character", ErrInvalidConfig)
	case c.Session.TTL <= 0:
		return fmt.Errorf("%w: session.ttl must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.Session.CookieName) == "":
		return fmt.Errorf("%w: session.cookie_name must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Auth.Username) == "":
		return fmt.Errorf("%w: auth.username must not be empty", ErrInvalidConfig)
	case c.Auth.Password == "" && c.Auth.PasswordHash == "":
		return fmt.Errorf("%w: auth.password or auth.password_hash is required", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
