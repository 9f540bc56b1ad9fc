package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret        []byte
	AdminTokenTTL    time.Duration
	CustomerTokenTTL time.Duration

	PushEnabled     bool
	ExpoPushURL     string
	ExpoAccessToken string
	PushTimeout     time.Duration

	OTPSeedCode      string
	OTPRatePerMinute int

	ListingTTL            time.Duration
	ListingExpirySchedule string

	AdminEmail    string
	AdminPassword string

	LogLevel  string
	LogFormat string

	// CatalogFile points at the optional YAML catalog
	CatalogFile string
}

const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", ""),
		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:                 getEnv("DB_DSN", "varto.db"),
		JWTSecret:             []byte(getEnv("JWT_SECRET", "varto_dev_secret_change_me")),
		AdminTokenTTL:         time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
		CustomerTokenTTL:      time.Duration(getEnvAsInt("CUSTOMER_JWT_TTL_HOURS", 720)) * time.Hour,
		PushEnabled:           getEnvAsBool("PUSH_ENABLED", true),
		ExpoPushURL:           getEnv("EXPO_PUSH_URL", DefaultExpoPushURL),
		ExpoAccessToken:       getEnv("EXPO_ACCESS_TOKEN", ""),
		PushTimeout:           time.Duration(getEnvAsInt("PUSH_TIMEOUT_SECONDS", 10)) * time.Second,
		OTPSeedCode:           getEnv("OTP_SEED_CODE", "123456"),
		OTPRatePerMinute:      getEnvAsInt("OTP_RATE_PER_MINUTE", 5),
		ListingTTL:            time.Duration(getEnvAsInt("LISTING_TTL_DAYS", 30)) * 24 * time.Hour,
		ListingExpirySchedule: getEnv("LISTING_EXPIRY_SCHEDULE", "@every 1h"),
		AdminEmail:            getEnv("ADMIN_EMAIL", ""),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		CatalogFile:           getEnv("CONFIG_FILE", ""),
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", cfg.DBDriver)
	}
	if cfg.OTPRatePerMinute <= 0 {
		return nil, fmt.Errorf("OTP_RATE_PER_MINUTE must be positive, got %d", cfg.OTPRatePerMinute)
	}
	return cfg, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("log_level", c.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
