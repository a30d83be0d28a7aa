package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the project configuration file looked up in the working
// directory.
const DefaultFile = "lattice.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the CLI and server configuration.
type Config struct {
	LogLevel   string     `yaml:"log_level"`
	Format     string     `yaml:"format"`
	Store      Store      `yaml:"store"`
	Server     Server     `yaml:"server"`
	Encryption Encryption `yaml:"encryption"`
}

// Store selects and configures the snapshot store.
type Store struct {
	Driver string `yaml:"driver"`
	// Path is the directory of the file driver or the database of the sqlite driver.
	Path     string        `yaml:"path"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	// Lock enables the distributed lock of the redis driver.
	Lock bool `yaml:"lock"`
}

// Server configures `lattice serve`.
type Server struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// Encryption holds hex encoded AES-256 keys. An empty Key disables encryption.
type Encryption struct {
	Key          string   `yaml:"key"`
	FallbackKeys []string `yaml:"fallback_keys"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Format:   "json",
		Store: Store{
			Driver: DriverFile,
			Path:   ".lattice/snapshots",
			Addr:   "localhost:6379",
		},
		Server: Server{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// Load reads path over the defaults and applies LATTICE_* environment
// overrides. A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && optional:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from LATTICE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LATTICE_LOG_LEVEL":      &c.LogLevel,
		"LATTICE_FORMAT":         &c.Format,
		"LATTICE_STORE_DRIVER":   &c.Store.Driver,
		"LATTICE_STORE_PATH":     &c.Store.Path,
		"LATTICE_STORE_PREFIX":   &c.Store.Prefix,
		"LATTICE_REDIS_ADDR":     &c.Store.Addr,
		"LATTICE_REDIS_PASSWORD": &c.Store.Password,
		"LATTICE_ADDR":           &c.Server.Addr,
		"LATTICE_ENCRYPTION_KEY": &c.Encryption.Key,
	}
	for name, field := range str {
		if v, ok := lookup(name); ok {
			*field = v
		}
	}

	if v, ok := lookup("LATTICE_STORE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LATTICE_STORE_TTL: %w", err)
		}
		c.Store.TTL = ttl
	}
	if v, ok := lookup("LATTICE_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LATTICE_REDIS_DB: %w", err)
		}
		c.Store.DB = db
	}
	if v, ok := lookup("LATTICE_STORE_LOCK"); ok {
		lock, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LATTICE_STORE_LOCK: %w", err)
		}
		c.Store.Lock = lock
	}
	return nil
}

// Validate checks the store driver and the encryption keys.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Lock && c.Store.Driver != DriverRedis {
		return fmt.Errorf("store lock requires the %s driver", DriverRedis)
	}

	if c.Encryption.Key == "" {
		if len(c.Encryption.FallbackKeys) > 0 {
			return errors.New("encryption fallback keys require an active key")
		}
		return nil
	}
	if _, _, err := c.Encryption.Keys(); err != nil {
		return err
	}
	return nil
}

// Keys decodes the active and fallback keys.
func (e Encryption) Keys() ([]byte, [][]byte, error) {
	active, err := decodeKey(e.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	var fallback [][]byte
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
