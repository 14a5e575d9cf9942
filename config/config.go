package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Referral configuration
	DefaultRefPercent  int             // Commission rate applied to referrer accounts
	RefTransferMinimum decimal.Decimal // Minimum ref_balance that can be swept into balance

	// Free case configuration
	FreeCaseCooldown time.Duration // One bonus claim per user per this interval

	// Stats configuration
	OnlineWindow  time.Duration // "online" means active within this window
	NewUserWindow time.Duration // "new" means registered within this window

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Business defaults mirror the platform rules
		DefaultRefPercent:  10,
		RefTransferMinimum: decimal.NewFromInt(3),
		FreeCaseCooldown:   24 * time.Hour,
		OnlineWindow:       5 * time.Minute,
		NewUserWindow:      24 * time.Hour,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if percent := os.Getenv("REF_PERCENT_DEFAULT"); percent != "" {
		if parsed, err := strconv.Atoi(percent); err == nil {
			config.DefaultRefPercent = parsed
		}
	}
	if minimum := os.Getenv("REF_TRANSFER_MINIMUM"); minimum != "" {
		if parsed, err := decimal.NewFromString(minimum); err == nil {
			config.RefTransferMinimum = parsed
		}
	}
	if hours := os.Getenv("FREE_CASE_COOLDOWN_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil {
			config.FreeCaseCooldown = time.Duration(parsed) * time.Hour
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
