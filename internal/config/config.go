package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"CENSUS_SERVER_HOST"`
	Port int    `yaml:"port" env:"CENSUS_SERVER_PORT"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"CENSUS_DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"CENSUS_LOG_LEVEL"`
}

type TransportConfig struct {
	// Mode selects the front: "http" serves REST plus MCP over HTTP,
	// "stdio" serves MCP on stdin/stdout for local use.
	Mode string `yaml:"mode" env:"CENSUS_TRANSPORT_MODE"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" env:"CENSUS_AUTH_ENABLED"`
	// DefaultCenter scopes all requests when auth is disabled.
	DefaultCenter string `yaml:"default_center" env:"CENSUS_DEFAULT_CENTER"`
}

// Load reads configuration from an optional YAML file, then applies
// environment variable overrides.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "census.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			Enabled:       false,
			DefaultCenter: "default",
		},
	}

	if path := os.Getenv("CENSUS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q: expected http or stdio", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
