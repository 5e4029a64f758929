// Package config loads server settings from flags, environment and an
// optional yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config keys, also the yaml field names
const (
	KeyAPIHost         = "api_host"
	KeyAPIPort         = "api_port"
	KeyDev             = "dev"
	KeyStoragePath     = "storage_path"
	KeyPID             = "pid"
	KeyPIDLock         = "pid_lock"
	KeySessionTTL      = "session_ttl"
	KeyCleanupInterval = "cleanup_interval"
	KeyLogLevel        = "log_level"
)

const (
	configFileName = "linesd"
	configFileType = "yaml"
	envPrefix      = "CHESSLINES"
)

type Config struct {
	APIHost         string
	APIPort         int
	Dev             bool
	StoragePath     string // empty disables persistence
	PIDPath         string
	PIDLock         bool
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	LogLevel        string
}

// New returns a viper instance with defaults and environment binding.
// CHESSLINES_API_PORT overrides api_port and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIHost, "localhost")
	v.SetDefault(KeyAPIPort, 8080)
	v.SetDefault(KeyDev, false)
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeyPID, "")
	v.SetDefault(KeyPIDLock, false)
	v.SetDefault(KeySessionTTL, 2*time.Hour)
	v.SetDefault(KeyCleanupInterval, 10*time.Minute)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or linesd.yaml from the working directory and
// ~/.chesslines when configFile is empty. A missing default file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.chesslines")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		APIHost:         v.GetString(KeyAPIHost),
		APIPort:         v.GetInt(KeyAPIPort),
		Dev:             v.GetBool(KeyDev),
		StoragePath:     v.GetString(KeyStoragePath),
		PIDPath:         v.GetString(KeyPID),
		PIDLock:         v.GetBool(KeyPIDLock),
		SessionTTL:      v.GetDuration(KeySessionTTL),
		CleanupInterval: v.GetDuration(KeyCleanupInterval),
		LogLevel:        v.GetString(KeyLogLevel),
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that cannot work together
func (c *Config) Validate() error {
	if c.PIDLock && c.PIDPath == "" {
		return errors.New("pid_lock requires pid to be set")
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port out of range: %d", c.APIPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive: %s", c.SessionTTL)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive: %s", c.CleanupInterval)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Addr is the API listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// Logger builds the process logger: console output in dev mode, JSON otherwise
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.Dev {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
