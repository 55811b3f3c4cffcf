package notiondatabase

import (
	"fmt"
	"time"
)

type Config struct {
	DatabaseTitle string        `mapstructure:"database_title"`
	SkipSample    bool          `mapstructure:"skip_sample"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		DatabaseTitle: "Chat Sessions",
		Timeout:       45 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DatabaseTitle == "" {
		return fmt.Errorf("database_title is required")
	}
	return nil
}
