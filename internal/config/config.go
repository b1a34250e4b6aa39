// Package config provides configuration management for the loom CLI and
// server using Viper: YAML files (.loom.yml), environment variable overrides
// with the LOOM_ prefix, and command-line flag bindings, in that precedence
// order from lowest to highest.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loomkit/loom/internal/markup"
)

type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Cache     CacheConfig     `yaml:"cache"`
	Dialect   DialectConfig   `yaml:"dialect"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

type TemplatesConfig struct {
	// Root is the directory template names are resolved below.
	Root string `yaml:"root"`
	// Mode is the template mode: html, xml, text or raw.
	Mode string `yaml:"mode"`
	// Encoding is the source charset (IANA name); empty means UTF-8.
	Encoding string `yaml:"encoding"`
}

type CacheConfig struct {
	// MaxEvents bounds the total number of cached events; 0 is unbounded.
	MaxEvents int64 `yaml:"max_events" mapstructure:"max_events"`
	// TTL expires entries; 0 disables expiry.
	TTL time.Duration `yaml:"ttl"`
}

type DialectConfig struct {
	// Prefix is the attribute namespace of the basic dialect.
	Prefix string `yaml:"prefix"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SetDefaults registers defaults on viper; call before Load.
func SetDefaults() {
	viper.SetDefault("templates.root", ".")
	viper.SetDefault("templates.mode", "html")
	viper.SetDefault("templates.encoding", "")
	viper.SetDefault("cache.max_events", int64(1_000_000))
	viper.SetDefault("cache.ttl", time.Duration(0))
	viper.SetDefault("dialect.prefix", "lm")
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// Load builds the configuration from viper's current state and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Mode returns the parsed template mode.
func (c *Config) Mode() (markup.TemplateMode, error) {
	return markup.ParseMode(c.Templates.Mode)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if _, err := markup.ParseMode(c.Templates.Mode); err != nil {
		return fmt.Errorf("templates.mode: %w", err)
	}
	if c.Cache.MaxEvents < 0 {
		return fmt.Errorf("cache.max_events must not be negative, got %d", c.Cache.MaxEvents)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [0, 65535], got %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if strings.Contains(c.Dialect.Prefix, ":") {
		return fmt.Errorf("dialect.prefix must not contain a colon, got %q", c.Dialect.Prefix)
	}
	return nil
}
