// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads application configuration from config.toml with
// environment variable overrides under the BOXARR__ prefix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Host                  string   `toml:"host" mapstructure:"host"`
	Port                  int      `toml:"port" mapstructure:"port"`
	LogLevel              string   `toml:"logLevel" mapstructure:"logLevel"`
	LogPath               string   `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize            int      `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups         int      `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir               string   `toml:"dataDir" mapstructure:"dataDir"`
	DatabasePath          string   `toml:"databasePath" mapstructure:"databasePath"`
	MetricsEnabled        bool     `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	TorBoxURL             string   `toml:"torboxUrl" mapstructure:"torboxUrl"`
	TorBoxAPIKey          string   `toml:"torboxApiKey" mapstructure:"torboxApiKey"`
	CheckTickSeconds      int      `toml:"checkTickSeconds" mapstructure:"checkTickSeconds"`
	ManualCooldownSeconds int      `toml:"manualCooldownSeconds" mapstructure:"manualCooldownSeconds"`
	NotificationURLs      []string `toml:"notificationUrls" mapstructure:"notificationUrls"`
}

// AppConfig wraps the parsed Config with the viper instance that read it.
type AppConfig struct {
	Config *Config
	viper  *viper.Viper
}

// New loads configuration. When configPath is empty the default location
// is used and a starter config file is written if none exists yet.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}

	if err := c.load(configPath); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AppConfig) load(configPath string) error {
	v := c.viper
	v.SetConfigType("toml")

	c.setDefaults(v)
	c.bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		dir := defaultConfigDir()
		v.AddConfigPath(dir)
		v.SetConfigName("config")

		if err := ensureDefaultConfig(filepath.Join(dir, "config.toml")); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	// Unconfigured paths hang off the config file's directory.
	configDir := filepath.Dir(v.ConfigFileUsed())
	if configDir == "." || configDir == "" {
		configDir = defaultConfigDir()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = configDir
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "boxarr.db")
	}

	c.Config = cfg
	return nil
}

func (c *AppConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8484)
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logPath", "")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)
	v.SetDefault("metricsEnabled", true)
	v.SetDefault("torboxUrl", "https://api.torbox.app")
	v.SetDefault("torboxApiKey", "")
	v.SetDefault("checkTickSeconds", 30)
	v.SetDefault("manualCooldownSeconds", 30)
	v.SetDefault("notificationUrls", []string{})
}

// bindEnv maps camelCase config keys to BOXARR__SNAKE_CASE variables.
func (c *AppConfig) bindEnv(v *viper.Viper) {
	for key, env := range map[string]string{
		"host":                  "BOXARR__HOST",
		"port":                  "BOXARR__PORT",
		"logLevel":              "BOXARR__LOG_LEVEL",
		"logPath":               "BOXARR__LOG_PATH",
		"logMaxSize":            "BOXARR__LOG_MAX_SIZE",
		"logMaxBackups":         "BOXARR__LOG_MAX_BACKUPS",
		"dataDir":               "BOXARR__DATA_DIR",
		"databasePath":          "BOXARR__DATABASE_PATH",
		"metricsEnabled":        "BOXARR__METRICS_ENABLED",
		"torboxUrl":             "BOXARR__TORBOX_URL",
		"torboxApiKey":          "BOXARR__TORBOX_API_KEY",
		"checkTickSeconds":      "BOXARR__CHECK_TICK_SECONDS",
		"manualCooldownSeconds": "BOXARR__MANUAL_COOLDOWN_SECONDS",
		"notificationUrls":      "BOXARR__NOTIFICATION_URLS",
	} {
		if err := v.BindEnv(key, env); err != nil {
			log.Error().Err(err).Str("key", key).Msg("config: failed to bind env var")
		}
	}
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "boxarr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "boxarr")
}

var defaultConfigTemplate = `# config.toml

# Hostname / IP
host = "127.0.0.1"

# Port
port = 8484

# Log level
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# TorBox API
torboxUrl = "https://api.torbox.app"
torboxApiKey = ""

# Scheduler tick and manual re-run cooldown, in seconds
checkTickSeconds = 30
manualCooldownSeconds = 30

# Outbound notification URLs (shoutrrr format), e.g.
# notificationUrls = ["discord://token@id"]
notificationUrls = []
`

func ensureDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	log.Info().Str("path", path).Msg("config: wrote default config file")
	return nil
}

// Validate checks settings the server cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TorBoxAPIKey) == "" {
		return fmt.Errorf("torboxApiKey is required (set it in config.toml or BOXARR__TORBOX_API_KEY)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
