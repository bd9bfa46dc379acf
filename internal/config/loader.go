package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haskel/studycost/internal/feature"
)

const redacted = "***"

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	data = substituteEnvVars(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func LoadOrDefault(path string) *Config {
	if path == "" {
		return Default()
	}

	cfg, err := Load(path)
	if err != nil {
		return Default()
	}

	return cfg
}

// Redacted returns a copy with secrets masked, safe to serve or print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Auth.Password != "" {
		out.Auth.Password = redacted
	}
	if out.Debug.Auth.Token != "" {
		out.Debug.Auth.Token = redacted
	}
	if out.Session.Redis.Password != "" {
		out.Session.Redis.Password = redacted
	}
	if out.Dataset.Postgres.DSN != "" {
		out.Dataset.Postgres.DSN = redacted
	}
	out.Schema.Fields = append([]feature.Field(nil), c.Schema.Fields...)
	return &out
}

// YAML renders the configuration as it would appear in a config file.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
