package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "sbx"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Poll    PollConfig    `mapstructure:"poll"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// ServerConfig identifies the Slicebox node
type ServerConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"` // last login, prefilled in the login prompt
}

// PollConfig holds the reload periods of the polling views
type PollConfig struct {
	OutboxInterval time.Duration `mapstructure:"outbox_interval"`
	BoxesInterval  time.Duration `mapstructure:"boxes_interval"`
}

// NotifyConfig holds how long notifications stay on screen
type NotifyConfig struct {
	InfoTimeout  time.Duration `mapstructure:"info_timeout"`
	ErrorTimeout time.Duration `mapstructure:"error_timeout"`
}

// HTTPConfig holds client settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// CacheConfig holds the local store location. An empty dir keeps
// everything in memory.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Poll: PollConfig{
			OutboxInterval: time.Second,
			BoxesInterval:  5 * time.Second,
		},
		Notify: NotifyConfig{
			InfoTimeout:  3 * time.Second,
			ErrorTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
	}
}

// IsConfigured returns true if a node URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// Dir returns the config directory. SBX_CONFIG_DIR overrides the OS default.
func Dir() string {
	if dir := os.Getenv("SBX_CONFIG_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// LoadConfig loads configuration from file and environment.
// Environment variables use the SBX_ prefix, e.g. SBX_SERVER_URL.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(Dir())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SBX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(cfg)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(cfg *Config) {
	viper.SetDefault("server.url", cfg.Server.URL)
	viper.SetDefault("server.username", cfg.Server.Username)
	viper.SetDefault("poll.outbox_interval", cfg.Poll.OutboxInterval)
	viper.SetDefault("poll.boxes_interval", cfg.Poll.BoxesInterval)
	viper.SetDefault("notify.info_timeout", cfg.Notify.InfoTimeout)
	viper.SetDefault("notify.error_timeout", cfg.Notify.ErrorTimeout)
	viper.SetDefault("http.timeout", cfg.HTTP.Timeout)
	viper.SetDefault("logging.file", cfg.Logging.File)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.username", cfg.Server.Username)

	viper.Set("poll.outbox_interval", cfg.Poll.OutboxInterval.String())
	viper.Set("poll.boxes_interval", cfg.Poll.BoxesInterval.String())

	viper.Set("notify.info_timeout", cfg.Notify.InfoTimeout.String())
	viper.Set("notify.error_timeout", cfg.Notify.ErrorTimeout.String())

	viper.Set("http.timeout", cfg.HTTP.Timeout.String())

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	viper.Set("cache.dir", cfg.Cache.Dir)

	return writeConfig()
}

// SaveUsername updates just the remembered login name
func SaveUsername(username string) error {
	viper.Set("server.username", username)
	return writeConfig()
}

// ClearServerConfig removes the node URL and login name while preserving
// the other settings
func ClearServerConfig() error {
	viper.Set("server.url", "")
	viper.Set("server.username", "")
	return writeConfig()
}

func writeConfig() error {
	configPath := Dir()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
