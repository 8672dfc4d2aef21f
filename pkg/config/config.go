// Package config loads planweave configuration from a TOML file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cfaller/planweave/pkg/errors"
)

// Config is the full application configuration. Zero values fall back to
// the defaults from Default().
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Store  StoreConfig  `toml:"store"`
	Source SourceConfig `toml:"source"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig controls frame geometry.
type LayoutConfig struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	MarginX float64 `toml:"margin_x"`
	MarginY float64 `toml:"margin_y"`
}

// StoreConfig selects the override persistence backend.
type StoreConfig struct {
	// Backend is one of "memory", "file" or "redis".
	Backend string `toml:"backend"`
	// Dir is the storage directory for the file backend.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SourceConfig configures remote dataset loading.
type SourceConfig struct {
	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the MongoDB dataset source.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: "file",
			Dir:     defaultStoreDir(),
		},
		Source: SourceConfig{
			Mongo: MongoConfig{
				Database:   "planweave",
				Collection: "roadmaps",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the conventional config file location, or "" if no
// user config directory is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "planweave", "config.toml")
}

func defaultStoreDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".planweave"
	}
	return filepath.Join(dir, "planweave")
}

// Load reads configuration from path, layered over Default(). A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "", "memory", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store backend redis requires redis.addr")
	}
	return nil
}
