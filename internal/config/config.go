package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the statfx simulation server.
type Config struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Simulation
	TickMillis int `yaml:"tick_millis"`

	// Persistence. When disabled the server runs purely in memory.
	Database DatabaseConfig `yaml:"database"`

	// Stacking rules keyed by effect identity; unlisted identities
	// default to no_stacking.
	Stacking []StackingRule `yaml:"stacking"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// StackingRule declares the stacking policy for one effect identity.
// Policy is one of: no_stacking, no_stacking_reset_timer, multiple_effects,
// multiple_effects_reset_timer. Max applies to the multiple_* policies.
type StackingRule struct {
	Identity string `yaml:"identity"`
	Policy   string `yaml:"policy"`
	Max      int    `yaml:"max"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		BindAddress: "0.0.0.0",
		Port:        8710,
		LogLevel:    "info",
		TickMillis:  50,
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "statfx",
			Password: "statfx",
			DBName:   "statfx",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file. If the file doesn't exist, returns
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
