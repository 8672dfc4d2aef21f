package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cfaller/planweave/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "file")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
width = 1600
height = 900

[store]
backend = "redis"

[store.redis]
addr = "localhost:6379"
db = 2

[source.mongo]
uri = "mongodb://localhost:27017"

[server]
addr = ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Layout.Width != 1600 || cfg.Layout.Height != 900 {
		t.Errorf("Layout = %+v, want width 1600 height 900", cfg.Layout)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "redis")
	}
	if cfg.Store.Redis.Addr != "localhost:6379" || cfg.Store.Redis.DB != 2 {
		t.Errorf("Store.Redis = %+v", cfg.Store.Redis)
	}
	if cfg.Source.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("Source.Mongo.URI = %q", cfg.Source.Mongo.URI)
	}
	// Unset values keep their defaults.
	if cfg.Source.Mongo.Database != "planweave" {
		t.Errorf("Source.Mongo.Database = %q, want default", cfg.Source.Mongo.Database)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{
			name:    "unknown backend",
			content: "[store]\nbackend = \"etcd\"\n",
			code:    errors.ErrCodeInvalidInput,
		},
		{
			name:    "redis without addr",
			content: "[store]\nbackend = \"redis\"\n",
			code:    errors.ErrCodeInvalidInput,
		},
		{
			name:    "malformed toml",
			content: "[store\n",
			code:    errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestLoadValidationRedisAddrDefault(t *testing.T) {
	// Redis addr given in the file satisfies the backend requirement.
	path := writeConfig(t, "[store]\nbackend = \"redis\"\n[store.redis]\naddr = \"cache:6379\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Redis.Addr != "cache:6379" {
		t.Errorf("Store.Redis.Addr = %q", cfg.Store.Redis.Addr)
	}
}
