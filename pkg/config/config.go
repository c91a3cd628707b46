// Package config loads and validates service configuration.
package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	RouterType    string `mapstructure:"router_type"`
	Service       ServiceConfig
	HTTP          HTTPConfig
	Management    ManagementConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
}

// ServiceConfig identifies the service.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the public API server.
type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ManagementConfig configures the management server (health, metrics).
type ManagementConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig groups storage backends.
type DatabaseConfig struct {
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
}

// MongoDBConfig configures the MongoDB connection.
type MongoDBConfig struct {
	URL              string        `mapstructure:"url"`
	Database         string        `mapstructure:"database"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// ObservabilityConfig groups logging and tracing settings.
type ObservabilityConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// RateLimitConfig configures the public API rate limiter.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerSecond int  `mapstructure:"requests_per_second"`
	Burst             int  `mapstructure:"burst"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		RouterType: "gin",
		Service: ServiceConfig{
			Name:        "sabormap",
			Environment: "development",
		},
		HTTP: HTTPConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Management: ManagementConfig{
			Enabled:      true,
			Port:         9090,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			MongoDB: MongoDBConfig{
				URL:              "mongodb://localhost:27017",
				Database:         "sabormap",
				ConnectTimeout:   5 * time.Second,
				OperationTimeout: 5 * time.Second,
			},
		},
		Observability: ObservabilityConfig{
			Log: LogConfig{
				Level:  "info",
				Format: "json",
			},
			Tracing: TracingConfig{
				Enabled:    false,
				Endpoint:   "localhost:4317",
				SampleRate: 0.1,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 100,
			Burst:             200,
		},
	}
}
