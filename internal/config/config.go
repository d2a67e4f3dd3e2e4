package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	APIBaseURL        string        `mapstructure:"api_base_url"`
	APIToken          string        `mapstructure:"api_token"`
	Role              string        `mapstructure:"role"` // seeker, recruiter
	UserID            string        `mapstructure:"user_id"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	SortOrder         string        `mapstructure:"sort_order"` // desc, asc
	EnrichConcurrency int           `mapstructure:"enrich_concurrency"`
	LogLevel          string        `mapstructure:"log_level"`
	Env               string        `mapstructure:"env"` // prod, dev
}

// ValidKeys are the keys accepted by Set
var ValidKeys = []string{
	"api_base_url", "api_token", "role", "user_id", "poll_interval",
	"request_timeout", "sort_order", "enrich_concurrency", "log_level", "env",
}

var AppConfig *Config

// Initialize loads or creates the configuration file
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return Load(filepath.Join(homeDir, ".applytrack", "config.yaml"))
}

// Load reads configuration from configFile, creating it with defaults if it
// does not exist. A .env file in the working directory and APPLYTRACK_*
// environment variables override file values.
func Load(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return err
		}
	}

	// a missing .env is fine
	_ = godotenv.Load()

	viper.Reset()
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("APPLYTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

func setDefaults() {
	viper.SetDefault("api_base_url", "http://localhost:5000/api")
	viper.SetDefault("api_token", "")
	viper.SetDefault("role", "seeker")
	viper.SetDefault("user_id", "")
	viper.SetDefault("poll_interval", 30*time.Second)
	viper.SetDefault("request_timeout", 10*time.Second)
	viper.SetDefault("sort_order", "desc")
	viper.SetDefault("enrich_concurrency", 4)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("env", "prod")
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	switch c.Role {
	case "seeker", "recruiter":
	default:
		return fmt.Errorf("invalid role %q: must be seeker or recruiter", c.Role)
	}
	switch c.SortOrder {
	case "asc", "desc":
	default:
		return fmt.Errorf("invalid sort_order %q: must be asc or desc", c.SortOrder)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.EnrichConcurrency <= 0 {
		return fmt.Errorf("enrich_concurrency must be positive")
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(path string) error {
	defaultConfig := `# Applytrack Configuration
# Backend API
api_base_url: http://localhost:5000/api

# Session (keep this file secure!)
# role: seeker or recruiter
role: seeker
user_id: ""
api_token: ""

# Refresh
poll_interval: 30s
request_timeout: 10s

# Display: desc (newest first) or asc
sort_order: desc
enrich_concurrency: 4

# Logging: env prod or dev
log_level: info
env: prod
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

// Set updates a configuration value
func Set(key, value string) error {
	valid := false
	for _, k := range ValidKeys {
		if k == key {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid key %q: must be one of %v", key, ValidKeys)
	}
	viper.Set(key, value)
	return viper.WriteConfig()
}

// Get retrieves a configuration value
func Get(key string) string {
	return viper.GetString(key)
}

// GetConfigPath returns the path to the config file in use
func GetConfigPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".applytrack", "config.yaml")
}
