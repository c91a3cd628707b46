package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads and validates configuration.
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using viper with precedence ENV > file > defaults.
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a loader. configFile may be empty; envPrefix is the
// prefix for environment variables (e.g. "SABORMAP").
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{configFile: configFile, envPrefix: envPrefix}
}

// Load reads defaults, then the config file if given, then the environment.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("router_type", d.RouterType)
	v.SetDefault("service.name", d.Service.Name)
	v.SetDefault("service.environment", d.Service.Environment)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", d.HTTP.IdleTimeout)

	v.SetDefault("management.enabled", d.Management.Enabled)
	v.SetDefault("management.port", d.Management.Port)
	v.SetDefault("management.read_timeout", d.Management.ReadTimeout)
	v.SetDefault("management.write_timeout", d.Management.WriteTimeout)

	v.SetDefault("database.mongodb.url", d.Database.MongoDB.URL)
	v.SetDefault("database.mongodb.database", d.Database.MongoDB.Database)
	v.SetDefault("database.mongodb.connect_timeout", d.Database.MongoDB.ConnectTimeout)
	v.SetDefault("database.mongodb.operation_timeout", d.Database.MongoDB.OperationTimeout)

	v.SetDefault("observability.log.level", d.Observability.Log.Level)
	v.SetDefault("observability.log.format", d.Observability.Log.Format)
	v.SetDefault("observability.tracing.enabled", d.Observability.Tracing.Enabled)
	v.SetDefault("observability.tracing.endpoint", d.Observability.Tracing.Endpoint)
	v.SetDefault("observability.tracing.sample_rate", d.Observability.Tracing.SampleRate)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}

// bindEnvVars binds environment variables explicitly for nested keys.
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("router_type", l.prefixedEnv("ROUTER_TYPE"))
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	v.BindEnv("http.port", l.prefixedEnv("HTTP_PORT"))
	v.BindEnv("http.read_timeout", l.prefixedEnv("HTTP_READ_TIMEOUT"))
	v.BindEnv("http.write_timeout", l.prefixedEnv("HTTP_WRITE_TIMEOUT"))
	v.BindEnv("http.idle_timeout", l.prefixedEnv("HTTP_IDLE_TIMEOUT"))

	v.BindEnv("management.enabled", l.prefixedEnv("MGMT_ENABLED"))
	v.BindEnv("management.port", l.prefixedEnv("MGMT_PORT"))
	v.BindEnv("management.read_timeout", l.prefixedEnv("MGMT_READ_TIMEOUT"))
	v.BindEnv("management.write_timeout", l.prefixedEnv("MGMT_WRITE_TIMEOUT"))

	v.BindEnv("database.mongodb.url", l.prefixedEnv("MONGODB_URL"))
	v.BindEnv("database.mongodb.database", l.prefixedEnv("MONGODB_DATABASE"))
	v.BindEnv("database.mongodb.connect_timeout", l.prefixedEnv("MONGODB_CONNECT_TIMEOUT"))
	v.BindEnv("database.mongodb.operation_timeout", l.prefixedEnv("MONGODB_OPERATION_TIMEOUT"))

	v.BindEnv("observability.log.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log.format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("observability.tracing.enabled", l.prefixedEnv("TRACING_ENABLED"))
	v.BindEnv("observability.tracing.endpoint", l.prefixedEnv("TRACING_ENDPOINT"))
	v.BindEnv("observability.tracing.sample_rate", l.prefixedEnv("TRACING_SAMPLE_RATE"))

	v.BindEnv("rate_limit.enabled", l.prefixedEnv("RATE_LIMIT_ENABLED"))
	v.BindEnv("rate_limit.requests_per_second", l.prefixedEnv("RATE_LIMIT_RPS"))
	v.BindEnv("rate_limit.burst", l.prefixedEnv("RATE_LIMIT_BURST"))
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return l.envPrefix + "_" + name
}

// Validate checks the loaded configuration for inconsistencies.
func (l *ViperLoader) Validate(cfg *Config) error {
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", cfg.HTTP.Port)
	}
	if cfg.Management.Enabled {
		if cfg.Management.Port < 1 || cfg.Management.Port > 65535 {
			return fmt.Errorf("management.port must be between 1 and 65535, got %d", cfg.Management.Port)
		}
		if cfg.Management.Port == cfg.HTTP.Port {
			return fmt.Errorf("management.port must differ from http.port")
		}
	}

	if strings.TrimSpace(cfg.Database.MongoDB.URL) == "" {
		return fmt.Errorf("database.mongodb.url is required")
	}
	if strings.TrimSpace(cfg.Database.MongoDB.Database) == "" {
		return fmt.Errorf("database.mongodb.database is required")
	}
	if cfg.Database.MongoDB.ConnectTimeout <= 0 {
		return fmt.Errorf("database.mongodb.connect_timeout must be positive")
	}
	if cfg.Database.MongoDB.OperationTimeout <= 0 {
		return fmt.Errorf("database.mongodb.operation_timeout must be positive")
	}

	switch cfg.Observability.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("observability.log.level %q is invalid", cfg.Observability.Log.Level)
	}
	switch cfg.Observability.Log.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("observability.log.format %q is invalid", cfg.Observability.Log.Format)
	}

	if cfg.Observability.Tracing.Enabled {
		if strings.TrimSpace(cfg.Observability.Tracing.Endpoint) == "" {
			return fmt.Errorf("observability.tracing.endpoint is required when tracing is enabled")
		}
		if cfg.Observability.Tracing.SampleRate < 0 || cfg.Observability.Tracing.SampleRate > 1 {
			return fmt.Errorf("observability.tracing.sample_rate must be between 0 and 1")
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond < 1 {
			return fmt.Errorf("rate_limit.requests_per_second must be at least 1")
		}
		if cfg.RateLimit.Burst < cfg.RateLimit.RequestsPerSecond {
			return fmt.Errorf("rate_limit.burst must be at least requests_per_second")
		}
	}

	return nil
}
