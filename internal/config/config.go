package config

import (
	"fmt"
	"time"

	"github.com/haskel/studycost/internal/feature"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Model      ModelConfig      `yaml:"model"`
	Schema     SchemaConfig     `yaml:"schema"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Session    SessionConfig    `yaml:"session"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Debug      DebugConfig      `yaml:"debug"`
}

// DebugConfig holds debug mode configuration.
type DebugConfig struct {
	// Enabled exposes /debug/config and /debug/reload.
	Enabled bool `yaml:"enabled"`
	// Auth holds debug-specific authentication.
	// If set, debug endpoints require this token.
	// If not set but main auth is enabled, main auth is used.
	Auth DebugAuthConfig `yaml:"auth"`
}

// DebugAuthConfig holds debug endpoint authentication.
type DebugAuthConfig struct {
	// Token for Bearer authentication on debug endpoints.
	// If empty, falls back to main auth.
	Token string `yaml:"token"`
}

type ServerConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	PIDFile      string          `yaml:"pid_file"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
	Profiling    ProfilingConfig `yaml:"profiling"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type ProfilingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RateLimitConfig holds per-client token bucket settings.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ModelConfig points at the exported model artifact.
type ModelConfig struct {
	Path string `yaml:"path"`
}

// SchemaConfig selects the form schema. Fields, when given, replace the
// preset's fields; Version then names the custom schema.
type SchemaConfig struct {
	Preset      string          `yaml:"preset"`
	Version     string          `yaml:"version"`
	RangePolicy string          `yaml:"range_policy"`
	Fields      []feature.Field `yaml:"fields"`
}

// DatasetConfig selects the EDA data source.
type DatasetConfig struct {
	// Source: csv, postgres or none
	Source       string         `yaml:"source"`
	Path         string         `yaml:"path"`
	TopCountries int            `yaml:"top_countries"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// SessionConfig selects where per-user estimates are kept.
type SessionConfig struct {
	// Backend: memory, file or redis
	Backend          string      `yaml:"backend"`
	TTLSec           int         `yaml:"ttl_sec"`
	DataDir          string      `yaml:"data_dir"`
	FlushIntervalSec int         `yaml:"flush_interval_sec"`
	Redis            RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MonitoringConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) MonitoringInterval() time.Duration {
	return time.Duration(c.Monitoring.IntervalMS) * time.Millisecond
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSec) * time.Second
}

func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Session.FlushIntervalSec) * time.Second
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BuildSchema resolves the configured schema.
func (s *SchemaConfig) BuildSchema() (*feature.Schema, error) {
	if len(s.Fields) > 0 {
		schema := &feature.Schema{Version: s.Version, Fields: s.Fields}
		if err := schema.Validate(); err != nil {
			return nil, err
		}
		return schema, nil
	}

	schema, err := feature.Preset(s.Preset)
	if err != nil {
		return nil, err
	}
	if s.Version != "" {
		schema.Version = s.Version
	}
	return schema, nil
}
