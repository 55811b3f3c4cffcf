// internal/common/config/loader.go
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

var (
	notionTokenPrefixes   = []string{"secret_", "ntn_"}
	airtableTokenPrefixes = []string{"pat"}
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// config.<env>.yaml is optional
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v, env)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v, os.Getenv("APP_ENVIRONMENT"))
}

func finish(v *viper.Viper, env string) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if env != "" && cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets and endpoints that viper's AutomaticEnv
// cannot bind because the key is absent from the YAML.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Notion.Token == "" {
		if val := os.Getenv("NOTION_TOKEN"); val != "" {
			cfg.Notion.Token = val
		}
	}
	if cfg.Airtable.Token == "" {
		if val := os.Getenv("AIRTABLE_TOKEN"); val != "" {
			cfg.Airtable.Token = val
		}
	}
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Database.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Database.Redis.Password = val
	}
	if val := os.Getenv("RATE_LIMIT_BACKEND"); val != "" {
		cfg.RateLimit.Backend = val
	}
}

// Defaults returns a config holding only default values, with no tokens.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "session-provisioner"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 10 * 1024
	}

	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com"
	}
	if cfg.Notion.Timeout == 0 {
		cfg.Notion.Timeout = 30000
	}
	if cfg.Notion.RequestsPerSecond == 0 {
		cfg.Notion.RequestsPerSecond = 3
	}
	if cfg.Notion.Burst == 0 {
		cfg.Notion.Burst = 5
	}

	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.TableName == "" {
		cfg.Airtable.TableName = "Chat Sessions"
	}
	if len(cfg.Airtable.CandidateTables) == 0 {
		cfg.Airtable.CandidateTables = []string{"Chat Sessions", "Sessions", "Conversations", "Table 1"}
	}
	if cfg.Airtable.Timeout == 0 {
		cfg.Airtable.Timeout = 30000
	}
	if cfg.Airtable.RequestsPerSecond == 0 {
		cfg.Airtable.RequestsPerSecond = 5
	}
	if cfg.Airtable.Burst == 0 {
		cfg.Airtable.Burst = 5
	}

	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.RateLimit.KeyPrefix == "" {
		cfg.RateLimit.KeyPrefix = "ratelimit:"
	}
	if cfg.RateLimit.SweepInterval == 0 {
		cfg.RateLimit.SweepInterval = 60
	}
	if cfg.RateLimit.General.Max == 0 {
		cfg.RateLimit.General.Max = 100
	}
	if cfg.RateLimit.General.Window == 0 {
		cfg.RateLimit.General.Window = 60
	}
	if cfg.RateLimit.Provisioning.Max == 0 {
		cfg.RateLimit.Provisioning.Max = 10
	}
	if cfg.RateLimit.Provisioning.Window == 0 {
		cfg.RateLimit.Provisioning.Window = 15 * 60
	}

	if cfg.Provisioning.Notion.DatabaseTitle == "" {
		cfg.Provisioning.Notion.DatabaseTitle = "Chat Sessions"
	}
	if cfg.Provisioning.Notion.Timeout == 0 {
		cfg.Provisioning.Notion.Timeout = 45000
	}
	if cfg.Provisioning.Airtable.Timeout == 0 {
		cfg.Provisioning.Airtable.Timeout = 45000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Notion.Token == "" {
		return fmt.Errorf("notion.token is required (set NOTION_TOKEN)")
	}
	if !hasAnyPrefix(cfg.Notion.Token, notionTokenPrefixes) {
		return fmt.Errorf("notion.token must start with one of %v", notionTokenPrefixes)
	}

	if cfg.Airtable.Token == "" {
		return fmt.Errorf("airtable.token is required (set AIRTABLE_TOKEN)")
	}
	if !hasAnyPrefix(cfg.Airtable.Token, airtableTokenPrefixes) {
		return fmt.Errorf("airtable.token must start with one of %v", airtableTokenPrefixes)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}

	switch cfg.RateLimit.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when rate_limit.backend is redis")
		}
	default:
		return fmt.Errorf("rate_limit.backend must be memory or redis, got %q", cfg.RateLimit.Backend)
	}

	for name, limit := range map[string]LimitConfig{
		"general":      cfg.RateLimit.General,
		"provisioning": cfg.RateLimit.Provisioning,
	} {
		if limit.Max < 0 || limit.Window < 0 {
			return fmt.Errorf("rate_limit.%s max and window must be positive", name)
		}
	}

	return nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWindow converts seconds from config to time.Duration.
func GetWindow(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
