package config

import "github.com/haskel/studycost/internal/feature"

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			PIDFile:      "/var/run/studycost.pid",
			MaxBodyBytes: 64 << 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 20,
				Burst:             40,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Model: ModelConfig{
			Path: "/var/lib/studycost/model.json",
		},
		Schema: SchemaConfig{
			Preset:      feature.PresetStudyCost,
			RangePolicy: "clamp",
		},
		Dataset: DatasetConfig{
			Source:       "none",
			TopCountries: 10,
			Postgres: PostgresConfig{
				Table: "study_costs",
			},
		},
		Session: SessionConfig{
			Backend:          "memory",
			TTLSec:           86400,
			DataDir:          "/var/lib/studycost",
			FlushIntervalSec: 30,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "studycost:session:",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Monitoring: MonitoringConfig{
			IntervalMS: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
