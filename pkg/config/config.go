package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Provider struct {
		Host           string        `yaml:"host"`
		APIKey         string        `yaml:"api_key"`
		APISecret      string        `yaml:"api_secret"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		JoinBaseURL    string        `yaml:"join_base_url"`
	} `yaml:"provider"`

	Filter struct {
		ExpectedRooms     uint    `yaml:"expected_rooms"`
		FalsePositiveRate float64 `yaml:"false_positive_rate"`
		SnapshotKey       string  `yaml:"snapshot_key"`
	} `yaml:"filter"`

	Admission struct {
		CredentialTTL time.Duration `yaml:"credential_ttl"`
		HandoffTTL    time.Duration `yaml:"handoff_ttl"`
	} `yaml:"admission"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}

	// Provider
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key must not be empty")
	}
	if c.Provider.APISecret == "" {
		return fmt.Errorf("provider.api_secret must not be empty")
	}
	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("provider.request_timeout must be > 0")
	}

	// Filter
	if c.Filter.ExpectedRooms == 0 {
		return fmt.Errorf("filter.expected_rooms must be > 0")
	}
	if c.Filter.FalsePositiveRate <= 0 || c.Filter.FalsePositiveRate >= 1 {
		return fmt.Errorf("filter.false_positive_rate must be in (0, 1)")
	}
	if c.Filter.SnapshotKey == "" {
		return fmt.Errorf("filter.snapshot_key must not be empty")
	}

	// Admission
	if c.Admission.CredentialTTL <= 0 {
		return fmt.Errorf("admission.credential_ttl must be > 0")
	}
	if c.Admission.HandoffTTL <= 0 {
		return fmt.Errorf("admission.handoff_ttl must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1]")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Auth.JWTSecret = "change-me-in-production"

	cfg.Provider.Host = "http://localhost:7880"
	cfg.Provider.APIKey = "devkey"
	cfg.Provider.APISecret = "devsecret"
	cfg.Provider.RequestTimeout = 10 * time.Second
	cfg.Provider.JoinBaseURL = "http://localhost:5173"

	cfg.Filter.ExpectedRooms = 1000
	cfg.Filter.FalsePositiveRate = 0.01
	cfg.Filter.SnapshotKey = "roomgate:room_bloom"

	cfg.Admission.CredentialTTL = 6 * time.Hour
	cfg.Admission.HandoffTTL = 5 * time.Minute

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "roomgate"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100
	cfg.RateLimiting.MaxConcurrent = 0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("ROOMGATE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if addr := os.Getenv("ROOMGATE_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
		c.Redis.Enabled = true
	}
	if level := os.Getenv("ROOMGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("ROOMGATE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if host := os.Getenv("ROOMGATE_PROVIDER_HOST"); host != "" {
		c.Provider.Host = host
	}
	if key := os.Getenv("ROOMGATE_PROVIDER_API_KEY"); key != "" {
		c.Provider.APIKey = key
	}
	if secret := os.Getenv("ROOMGATE_PROVIDER_API_SECRET"); secret != "" {
		c.Provider.APISecret = secret
	}
}
