package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Adpilot publishing backend.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Graph     GraphConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Schedule  ScheduleConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GraphConfig holds credentials and fixed identifiers for the Meta Graph API.
type GraphConfig struct {
	AccessToken string
	AccountID   string
	PageID      string
	APIVersion  string
	Timeout     time.Duration
}

// BaseURL returns the versioned Graph API root.
func (g GraphConfig) BaseURL() string {
	return "https://graph.facebook.com/" + g.APIVersion
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// ScheduleConfig holds the platform scheduling policy. MinLead is the
// floor the platform enforces on scheduled publish times. AdSetTZ is
// the civil timezone the ad-set start time is anchored to before it is
// re-derived as UTC.
type ScheduleConfig struct {
	MinLead time.Duration
	AdSetTZ string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADPILOT_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADPILOT_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADPILOT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADPILOT_DB_HOST", "localhost"),
			Port:     getIntEnv("ADPILOT_DB_PORT", 5432),
			User:     getEnv("ADPILOT_DB_USER", "adpilot"),
			Password: getEnv("ADPILOT_DB_PASSWORD", "adpilot_secret"),
			DBName:   getEnv("ADPILOT_DB_NAME", "adpilot"),
			SSLMode:  getEnv("ADPILOT_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADPILOT_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADPILOT_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADPILOT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADPILOT_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADPILOT_REDIS_DB", 0),
		},
		Graph: GraphConfig{
			AccessToken: getEnv("ADPILOT_GRAPH_ACCESS_TOKEN", ""),
			AccountID:   getEnv("ADPILOT_GRAPH_ACCOUNT_ID", ""),
			PageID:      getEnv("ADPILOT_GRAPH_PAGE_ID", ""),
			APIVersion:  getEnv("ADPILOT_GRAPH_API_VERSION", "v22.0"),
			Timeout:     getDurationEnv("ADPILOT_GRAPH_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("ADPILOT_AUTH_ENABLED", true),
			MasterKey: getEnv("ADPILOT_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("ADPILOT_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("ADPILOT_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("ADPILOT_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("ADPILOT_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("ADPILOT_LOG_LEVEL", "info"),
			Format: getEnv("ADPILOT_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADPILOT_METRICS_ENABLED", true),
			Path:    getEnv("ADPILOT_METRICS_PATH", "/metrics"),
		},
		Schedule: ScheduleConfig{
			MinLead: getDurationEnv("ADPILOT_SCHEDULE_MIN_LEAD", 20*time.Minute),
			AdSetTZ: getEnv("ADPILOT_ADSET_TZ", "Asia/Karachi"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("ADPILOT_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Graph.AccessToken == "" {
		return fmt.Errorf("ADPILOT_GRAPH_ACCESS_TOKEN is required")
	}
	if c.Graph.AccountID == "" {
		return fmt.Errorf("ADPILOT_GRAPH_ACCOUNT_ID is required")
	}
	if c.Graph.PageID == "" {
		return fmt.Errorf("ADPILOT_GRAPH_PAGE_ID is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
