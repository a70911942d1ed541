package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the advisory server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Advisors   AdvisorsConfig
	Thresholds ThresholdConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AdvisorsConfig configures the two advisor consultations. Conservative and
// aggressive may run on different providers or different models of the same
// provider.
type AdvisorsConfig struct {
	Conservative AdvisorConfig
	Aggressive   AdvisorConfig
	Timeout      time.Duration
}

type AdvisorConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// ThresholdConfig holds the decision thresholds. Decimals keep the boundary
// comparisons exact across platforms.
type ThresholdConfig struct {
	// Consensus is the minimum agreement score for HasConsensus.
	Consensus decimal.Decimal
	// Alert fires when the agreement score is strictly below this value.
	Alert decimal.Decimal
	// Advice fires when the agreement score is strictly above this value.
	Advice decimal.Decimal
}

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"mock":      true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("ADVISORY_PORT", 8080),
			Env:  envString("ADVISORY_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Advisors: AdvisorsConfig{
			Conservative: AdvisorConfig{
				Provider: os.Getenv("ADVISOR_CONSERVATIVE_PROVIDER"),
				Model:    envString("ADVISOR_CONSERVATIVE_MODEL", ""),
				APIKey:   os.Getenv("ADVISOR_CONSERVATIVE_API_KEY"),
				BaseURL:  envString("ADVISOR_CONSERVATIVE_BASE_URL", ""),
			},
			Aggressive: AdvisorConfig{
				Provider: os.Getenv("ADVISOR_AGGRESSIVE_PROVIDER"),
				Model:    envString("ADVISOR_AGGRESSIVE_MODEL", ""),
				APIKey:   os.Getenv("ADVISOR_AGGRESSIVE_API_KEY"),
				BaseURL:  envString("ADVISOR_AGGRESSIVE_BASE_URL", ""),
			},
			Timeout: envDurationSecs("ADVISOR_TIMEOUT_SECS", 30*time.Second),
		},
		Thresholds: ThresholdConfig{
			Consensus: envDecimal("THRESHOLD_CONSENSUS", "0.70"),
			Alert:     envDecimal("THRESHOLD_ALERT", "0.60"),
			Advice:    envDecimal("THRESHOLD_ADVICE", "0.70"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if err := validateAdvisor("ADVISOR_CONSERVATIVE", c.Advisors.Conservative); err != nil {
		return err
	}
	if err := validateAdvisor("ADVISOR_AGGRESSIVE", c.Advisors.Aggressive); err != nil {
		return err
	}

	one := decimal.NewFromInt(1)
	for name, d := range map[string]decimal.Decimal{
		"THRESHOLD_CONSENSUS": c.Thresholds.Consensus,
		"THRESHOLD_ALERT":     c.Thresholds.Alert,
		"THRESHOLD_ADVICE":    c.Thresholds.Advice,
	} {
		if d.IsNegative() || d.GreaterThan(one) {
			return fmt.Errorf("%s must be between 0 and 1, got %s", name, d)
		}
	}
	if c.Thresholds.Alert.GreaterThan(c.Thresholds.Advice) {
		return fmt.Errorf("THRESHOLD_ALERT (%s) must not exceed THRESHOLD_ADVICE (%s)",
			c.Thresholds.Alert, c.Thresholds.Advice)
	}

	return nil
}

func validateAdvisor(prefix string, cfg AdvisorConfig) error {
	if cfg.Provider == "" {
		return fmt.Errorf("%s_PROVIDER is required", prefix)
	}
	if !validProviders[cfg.Provider] {
		return fmt.Errorf("%s_PROVIDER must be one of openai, anthropic, mock; got %q", prefix, cfg.Provider)
	}
	if (cfg.Provider == "openai" || cfg.Provider == "anthropic") && cfg.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is required when %s_PROVIDER is %s", prefix, prefix, cfg.Provider)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envDecimal(key, defaultVal string) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		d = decimal.RequireFromString(defaultVal)
	}
	return d
}
