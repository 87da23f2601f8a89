package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig points the client at the flight-search service
type ServerConfig struct {
	BaseURL string `yaml:"base_url" env:"FLIGHTS_BASE_URL" env-default:"http://localhost:5200"`
	// Timeout is in seconds
	Timeout int `yaml:"timeout" env:"FLIGHTS_TIMEOUT" env-default:"30"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// RequestTimeout returns the HTTP client timeout as a duration
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path. Only a missing file
// falls back to environment variables and defaults; a file that exists but
// cannot be parsed is an error.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if cfg.Server.BaseURL == "" {
		return nil, fmt.Errorf("server base URL must not be empty")
	}
	if cfg.Server.Timeout <= 0 {
		return nil, fmt.Errorf("server timeout must be positive, got %d", cfg.Server.Timeout)
	}

	return &cfg, nil
}
