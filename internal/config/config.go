// Package config loads service configuration from file, environment,
// and defaults.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for dosepilot.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Wearable  WearableConfig  `mapstructure:"wearable"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenTTLHrs int    `mapstructure:"token_ttl_hours"`
}

// CatalogConfig holds supplement catalog settings.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`  // empty uses the built-in catalog
	Watch bool   `mapstructure:"watch"` // hot-reload the file on change
}

// WearableConfig holds wearable provider settings.
type WearableConfig struct {
	Provider string `mapstructure:"provider"` // mock or http
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
	Timeout  int    `mapstructure:"timeout"`
}

// SchedulerConfig holds cron schedules for background jobs.
type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	WearableSync     string `mapstructure:"wearable_sync"`
	BaselineRecalc   string `mapstructure:"baseline_recalc"`
	MidnightRollover string `mapstructure:"midnight_rollover"`
}

// Load loads configuration from file, env, and defaults.
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.Set("storage.sqlite_path", filepath.Join(dataDir, "dosepilot.db"))
	v.Set("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "dosepilot.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (DOSEPILOT_SERVER_PORT, DOSEPILOT_AUTH_JWT_SECRET, ...)
	v.SetEnvPrefix("DOSEPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("auth.token_ttl_hours", 168)

	v.SetDefault("catalog.watch", false)

	v.SetDefault("wearable.provider", "mock")
	v.SetDefault("wearable.timeout", 15)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.wearable_sync", "30 5 * * *")
	v.SetDefault("scheduler.baseline_recalc", "0 4 * * *")
	v.SetDefault("scheduler.midnight_rollover", "5 0 * * *")
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dosepilot")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "dosepilot")
}

// loadEnvOverrides loads env vars Viper's AutomaticEnv misses on
// nested keys that were never touched by file or defaults.
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Server.Address = getEnv("DOSEPILOT_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("DOSEPILOT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Auth.JWTSecret = getEnv("DOSEPILOT_AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Catalog.Path = getEnv("DOSEPILOT_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Wearable.Provider = getEnv("DOSEPILOT_WEARABLE_PROVIDER", cfg.Wearable.Provider)
	cfg.Wearable.BaseURL = getEnv("DOSEPILOT_WEARABLE_BASE_URL", cfg.Wearable.BaseURL)
	cfg.Wearable.APIToken = getEnv("DOSEPILOT_WEARABLE_API_TOKEN", cfg.Wearable.APIToken)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}

	switch cfg.Wearable.Provider {
	case "mock", "http":
	default:
		return fmt.Errorf("wearable.provider %q is not supported", cfg.Wearable.Provider)
	}
	if cfg.Wearable.Provider == "http" && cfg.Wearable.BaseURL == "" {
		return fmt.Errorf("wearable.base_url is required for the http provider")
	}

	if cfg.Catalog.Path != "" {
		if _, err := os.Stat(cfg.Catalog.Path); err != nil {
			return fmt.Errorf("catalog.path %s: %w", cfg.Catalog.Path, err)
		}
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}
