package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Defaults taken from the pools the battles have always run with
var (
	DefaultCategories = []string{
		"Rock", "Trap", "Hip Hop", "Country", "Chill Lo-Fi",
		"Pop", "R&B", "Reggae", "Metal", "Gospel", "Electronic",
	}
	DefaultTiers = []int64{5, 15, 25}
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token            string
	AppID            string
	GuildID          string
	BattleChannelID  string
	StatsChannelID   string
	ResultsChannelID string

	// Storage
	DataDir string
	DBPath  string

	// Battle rules
	Categories     []string
	Tiers          []int64
	VotingDuration time.Duration
	EntryCooldown  time.Duration
	WinnerShare    decimal.Decimal

	// Sweeps
	SweepInterval     time.Duration
	PromotionInterval time.Duration
	StatsInterval     time.Duration

	// Adapter retries
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration

	// Admin HTTP API
	HTTPAddr       string
	AdminJWTSecret string

	// Result archive, optional
	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string

	// Payments, each provider optional
	PayPalClientID     string
	PayPalClientSecret string
	PayPalMode         string // "live" or "sandbox"
	StripeAPIKey       string

	// Environment
	Environment string // "development" or "production"
	LogLevel    string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from the process environment without validating it
func FromEnv() (*Config, error) {
	// Get working directory for resource paths
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	dataDir := getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data"))

	cfg := &Config{
		Token:            os.Getenv("DISCORD_TOKEN"),
		AppID:            os.Getenv("APP_ID"),
		GuildID:          os.Getenv("GUILD_ID"),
		BattleChannelID:  os.Getenv("BATTLE_CHANNEL_ID"),
		StatsChannelID:   os.Getenv("STATS_CHANNEL_ID"),
		ResultsChannelID: os.Getenv("RESULTS_CHANNEL_ID"),

		DataDir: dataDir,
		DBPath:  getEnvWithDefault("DB_PATH", filepath.Join(dataDir, "trackbattle.db")),

		HTTPAddr:       getEnvWithDefault("HTTP_ADDR", ":8080"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		ElasticsearchURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUsername: os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),

		PayPalClientID:     strings.TrimSpace(os.Getenv("PAYPAL_CLIENT_ID")),
		PayPalClientSecret: strings.TrimSpace(os.Getenv("PAYPAL_CLIENT_SECRET")),
		PayPalMode:         strings.ToLower(getEnvWithDefault("PAYPAL_MODE", "live")),
		StripeAPIKey:       os.Getenv("STRIPE_API_KEY"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "INFO"),
	}

	cfg.Categories = getListWithDefault("CATEGORIES", DefaultCategories)

	if cfg.Tiers, err = getTiers("TIERS", DefaultTiers); err != nil {
		return nil, err
	}

	durations := []struct {
		key   string
		dst   *time.Duration
		value time.Duration
	}{
		{"VOTING_DURATION", &cfg.VotingDuration, 24 * time.Hour},
		{"ENTRY_COOLDOWN", &cfg.EntryCooldown, 24 * time.Hour},
		{"SWEEP_INTERVAL", &cfg.SweepInterval, time.Minute},
		{"PROMOTION_INTERVAL", &cfg.PromotionInterval, 24 * time.Hour},
		{"STATS_INTERVAL", &cfg.StatsInterval, 5 * time.Minute},
		{"RETRY_INITIAL_BACKOFF", &cfg.RetryInitialBackoff, 500 * time.Millisecond},
		{"RETRY_MAX_BACKOFF", &cfg.RetryMaxBackoff, 8 * time.Second},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationWithDefault(d.key, d.value); err != nil {
			return nil, err
		}
	}

	if cfg.RetryMaxAttempts, err = getIntWithDefault("RETRY_MAX_ATTEMPTS", 4); err != nil {
		return nil, err
	}

	share := getEnvWithDefault("WINNER_SHARE", "0.70")
	if cfg.WinnerShare, err = decimal.NewFromString(share); err != nil {
		return nil, fmt.Errorf("invalid WINNER_SHARE %q: %w", share, err)
	}

	return cfg, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	return c.ValidateRules()
}

// ValidateRules checks the battle rule settings
func (c *Config) ValidateRules() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	if c.WinnerShare.LessThan(decimal.Zero) || c.WinnerShare.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("WINNER_SHARE must be between 0 and 1, got %s", c.WinnerShare)
	}
	if c.VotingDuration <= 0 {
		return fmt.Errorf("VOTING_DURATION must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.PayPalMode != "live" && c.PayPalMode != "sandbox" {
		return fmt.Errorf("PAYPAL_MODE must be live or sandbox, got %q", c.PayPalMode)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PayPalBaseURL returns the PayPal REST endpoint for the configured mode
func (c *Config) PayPalBaseURL() string {
	if c.PayPalMode == "sandbox" {
		return "https://api-m.sandbox.paypal.com"
	}
	return "https://api-m.paypal.com"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getListWithDefault splits a comma separated variable
func getListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getTiers(key string, defaultValue []int64) ([]int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return append([]int64(nil), defaultValue...), nil
	}
	var tiers []int64
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tier, err := strconv.ParseInt(item, 10, 64)
		if err != nil || tier <= 0 {
			return nil, fmt.Errorf("invalid tier %q in %s", item, key)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}
