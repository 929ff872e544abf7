package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	TelegramToken  string
	TelegramChatID int64

	Exchanges       []string
	TopN            int
	WindowMin       int
	LookbackHours   int
	PollSeconds     int
	PctThreshold    float64
	ZScoreThreshold float64
	CooldownMin     int
	MinSamples      int
	MaxConcurrency  int
	RequestTimeout  int // seconds
	RefreshHours    int

	CoinGeckoBase string
	StateDBPath   string
	DatabaseURL   string
	MetricsAddr   string
	LogLevel      string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:  getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
		Exchanges:       splitCSV(getEnvWithDefault("EXCHANGES", "binance,okx,bybit")),
		TopN:            getEnvIntWithDefault("TOP_N", 50),
		WindowMin:       getEnvIntWithDefault("WINDOW_MIN", 5),
		LookbackHours:   getEnvIntWithDefault("LOOKBACK_HOURS", 24),
		PollSeconds:     getEnvIntWithDefault("POLL_SECONDS", 60),
		PctThreshold:    getEnvFloatWithDefault("PCT_THRESHOLD", 200),
		ZScoreThreshold: getEnvFloatWithDefault("ZSCORE_THRESHOLD", 3.0),
		CooldownMin:     getEnvIntWithDefault("COOLDOWN_MIN", 30),
		MinSamples:      getEnvIntWithDefault("MIN_SAMPLES", 5),
		MaxConcurrency:  getEnvIntWithDefault("MAX_CONCURRENCY", 6),
		RequestTimeout:  getEnvIntWithDefault("REQUEST_TIMEOUT", 15),
		RefreshHours:    getEnvIntWithDefault("REFRESH_HOURS", 6),
		CoinGeckoBase:   getEnvWithDefault("COINGECKO_BASE", "https://api.coingecko.com/api/v3"),
		StateDBPath:     getEnvWithDefault("STATE_DB_PATH", "data/state.sqlite"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("EXCHANGES must name at least one exchange")
	}
	if c.WindowMin <= 0 {
		return fmt.Errorf("WINDOW_MIN must be positive, got %d", c.WindowMin)
	}
	if c.LookbackHours <= 0 {
		return fmt.Errorf("LOOKBACK_HOURS must be positive, got %d", c.LookbackHours)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("POLL_SECONDS must be positive, got %d", c.PollSeconds)
	}
	if c.MinSamples < 2 {
		return fmt.Errorf("MIN_SAMPLES must be at least 2, got %d", c.MinSamples)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

// Window returns the monitoring window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMin) * time.Minute
}

// Lookback returns the rolling baseline horizon as a duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// Cooldown returns the per-symbol alert cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMin) * time.Minute
}

// RefreshInterval returns how often the monitored universe is replaced.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshHours) * time.Hour
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
