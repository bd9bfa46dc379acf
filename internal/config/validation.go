package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Model.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("model: %w", err))
	}

	if err := c.Schema.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("schema: %w", err))
	}

	if err := c.Dataset.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dataset: %w", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}

	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}

	if err := c.Monitoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("monitoring: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.validateDebugSecurity(); err != nil {
		errs = append(errs, fmt.Errorf("debug: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be non-negative"))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (m *ModelConfig) Validate() error {
	if m.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

func (s *SchemaConfig) Validate() error {
	var errs []error

	switch s.RangePolicy {
	case "clamp", "none":
	default:
		errs = append(errs, fmt.Errorf("invalid range_policy: %s (valid: clamp, none)", s.RangePolicy))
	}

	if len(s.Fields) > 0 && s.Version == "" {
		errs = append(errs, fmt.Errorf("version is required with custom fields"))
	}

	if _, err := s.BuildSchema(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (d *DatasetConfig) Validate() error {
	switch d.Source {
	case "none", "":
		return nil
	case "csv":
		if d.Path == "" {
			return fmt.Errorf("path is required for csv source")
		}
	case "postgres":
		var errs []error
		if d.Postgres.DSN == "" {
			errs = append(errs, fmt.Errorf("postgres.dsn is required for postgres source"))
		}
		if d.Postgres.Table == "" {
			errs = append(errs, fmt.Errorf("postgres.table is required for postgres source"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("invalid source: %s (valid: csv, postgres, none)", d.Source)
	}
	return nil
}

func (s *SessionConfig) Validate() error {
	var errs []error

	if s.TTLSec < 0 {
		errs = append(errs, fmt.Errorf("ttl_sec must be non-negative"))
	}

	switch s.Backend {
	case "memory":
	case "file":
		if s.DataDir == "" {
			errs = append(errs, fmt.Errorf("data_dir cannot be empty for file backend"))
		}
		if s.FlushIntervalSec < 1 {
			errs = append(errs, fmt.Errorf("flush_interval_sec must be at least 1"))
		}
	case "redis":
		if s.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis.addr cannot be empty for redis backend"))
		}
		if s.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("redis.db must be non-negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid backend: %s (valid: memory, file, redis)", s.Backend))
	}

	return errors.Join(errs...)
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("path must start with /, got %q", m.Path)
	}
	return nil
}

func (m *MonitoringConfig) Validate() error {
	if m.IntervalMS < 100 {
		return fmt.Errorf("interval_ms must be at least 100, got %d", m.IntervalMS)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

// validateDebugSecurity refuses to expose debug or profiling endpoints
// without some form of authentication.
func (c *Config) validateDebugSecurity() error {
	protected := c.Auth.Enabled || c.Debug.Auth.Token != ""

	if c.Debug.Enabled && !protected {
		return fmt.Errorf("debug endpoints require auth.enabled or debug.auth.token")
	}
	if c.Server.Profiling.Enabled && !protected {
		return fmt.Errorf("profiling requires auth.enabled or debug.auth.token")
	}
	return nil
}
