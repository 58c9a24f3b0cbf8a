// Package config loads server settings from a YAML file, an optional .env
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// DefaultPath is read when no config file is given. A missing file is not
// an error.
const DefaultPath = "splitledger.yaml"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

var validDrivers = []string{DriverMemory, DriverSQLite}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LedgerConfig struct {
	Participants []string      `yaml:"participants"`
	DeleteWindow time.Duration `yaml:"delete_window"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // SQLite database file
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig enables token auth when JWTSecret is set.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	PassphraseHash string        `yaml:"passphrase_hash"` // bcrypt
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

// Enabled reports whether RPCs require a token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Ledger: LedgerConfig{
			Participants: []string{"Alice", "Bob", "Charlie"},
			DeleteWindow: ledger.DefaultDeleteWindow,
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Path:   "./data/ledger.db",
		},
		Log:  LogConfig{Level: "info"},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
	}
}

// LoadDotEnv loads variables from .env files into the environment. Missing
// files are skipped and variables already set are left alone.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LEDGER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LEDGER_PARTICIPANTS"); v != "" {
		c.Ledger.Participants = strings.Split(v, ",")
	}
	if v := os.Getenv("LEDGER_DELETE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_DELETE_WINDOW: %w", err)
		}
		c.Ledger.DeleteWindow = d
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LEDGER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LEDGER_PASSPHRASE_HASH"); v != "" {
		c.Auth.PassphraseHash = v
	}
	if v := os.Getenv("LEDGER_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	return nil
}

// ParticipantSet builds the ledger's participant set from the config.
func (c *Config) ParticipantSet() (models.ParticipantSet, error) {
	return models.NewParticipantSet(c.Ledger.Participants...)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address not configured (set LEDGER_ADDR)")
	}
	if _, err := c.ParticipantSet(); err != nil {
		return fmt.Errorf("invalid participants: %w", err)
	}
	if c.Ledger.DeleteWindow <= 0 {
		return fmt.Errorf("delete window must be positive, got %s", c.Ledger.DeleteWindow)
	}
	if !slices.Contains(validDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, validDrivers)
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.Path == "" {
		return errors.New("sqlite storage requires a database path (set DB_PATH)")
	}
	if c.Auth.Enabled() {
		if c.Auth.PassphraseHash == "" {
			return errors.New("auth enabled without a passphrase hash (set LEDGER_PASSPHRASE_HASH)")
		}
		if c.Auth.TokenTTL <= 0 {
			return fmt.Errorf("token TTL must be positive, got %s", c.Auth.TokenTTL)
		}
	}
	return nil
}
