// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Notion       NotionConfig       `mapstructure:"notion"`
	Airtable     AirtableConfig     `mapstructure:"airtable"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether stack traces and internal details must be hidden.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// --- Provider Config ---
type NotionConfig struct {
	Token             string  `mapstructure:"token"`
	BaseURL           string  `mapstructure:"base_url"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AirtableConfig struct {
	Token             string   `mapstructure:"token"`
	BaseURL           string   `mapstructure:"base_url"`
	TableName         string   `mapstructure:"table_name"`
	CandidateTables   []string `mapstructure:"candidate_tables"`
	Timeout           int      `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
	Burst             int      `mapstructure:"burst"`
}

// --- Request Pipeline Config ---
type RateLimitConfig struct {
	Backend       string      `mapstructure:"backend"` // memory | redis
	KeyPrefix     string      `mapstructure:"key_prefix"`
	SweepInterval int         `mapstructure:"sweep_interval"` // seconds
	General       LimitConfig `mapstructure:"general"`
	Provisioning  LimitConfig `mapstructure:"provisioning"`
}

type LimitConfig struct {
	Max    int `mapstructure:"max"`
	Window int `mapstructure:"window"` // seconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Provisioning Config ---
type ProvisioningConfig struct {
	Notion   NotionProvisioningConfig   `mapstructure:"notion"`
	Airtable AirtableProvisioningConfig `mapstructure:"airtable"`
}

type NotionProvisioningConfig struct {
	DatabaseTitle string `mapstructure:"database_title"`
	SkipSample    bool   `mapstructure:"skip_sample"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type AirtableProvisioningConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
