package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	LogLevel      string

	// DefaultCurrencyCode is used for accounts created without a currency.
	DefaultCurrencyCode string

	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxCost int64

	RateLimit          string // ulule format, e.g. "200-M"
	CORSAllowedOrigins []string

	// ImportDefaultAccountID is the asset account import rows fall back to.
	ImportDefaultAccountID string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEFAULT_CURRENCY_CODE", "EUR")
	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("CACHE_TTL", "10m")
	viper.SetDefault("CACHE_MAX_COST", 10000)
	viper.SetDefault("RATE_LIMIT", "200-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("IMPORT_DEFAULT_ACCOUNT_ID", "")

	// Actual environment variables override .env values and defaults.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:          viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:              viper.GetString("JWT_SECRET"),
		LogLevel:               strings.ToLower(viper.GetString("LOG_LEVEL")),
		DefaultCurrencyCode:    strings.ToUpper(viper.GetString("DEFAULT_CURRENCY_CODE")),
		CacheEnabled:           viper.GetBool("CACHE_ENABLED"),
		CacheMaxCost:           viper.GetInt64("CACHE_MAX_COST"),
		RateLimit:              viper.GetString("RATE_LIMIT"),
		ImportDefaultAccountID: viper.GetString("IMPORT_DEFAULT_ACCOUNT_ID"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// Load cache TTL (e.g., "10m", "1h")
	cacheTTLStr := viper.GetString("CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil || cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
		log.Printf("Warning: Invalid value for CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL.String())
	}
	cfg.CacheTTL = cacheTTL

	if cfg.CacheMaxCost <= 0 {
		cfg.CacheMaxCost = 10000
		log.Printf("Warning: Invalid value for CACHE_MAX_COST. Defaulting to %d.\n", cfg.CacheMaxCost)
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.ImportDefaultAccountID == "" {
		log.Println("Warning: IMPORT_DEFAULT_ACCOUNT_ID not set. Imports must name a default asset account.")
	}

	return cfg, nil
}
