// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, overrides, defaults and validation

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearOverrides keeps the caller's environment from leaking into a test
func clearOverrides(t *testing.T) {
	t.Helper()
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvDBPath, "")
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	clearOverrides(t)

	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:8080"
  grpc_addr: "0.0.0.0:50051"
  shutdown_timeout: "15s"
  health_interval: "30s"

database:
  driver: "mongo"
  connection_string: "mongodb://db:27017"
  name: "pokedex"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Server.GRPCAddr != "0.0.0.0:50051" {
		t.Errorf("Server.GRPCAddr = %q, want %q", cfg.Server.GRPCAddr, "0.0.0.0:50051")
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 15*time.Second)
	}
	if cfg.Server.HealthInterval != 30*time.Second {
		t.Errorf("Server.HealthInterval = %v, want %v", cfg.Server.HealthInterval, 30*time.Second)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverMongo)
	}
	if cfg.Database.ConnectionString != "mongodb://db:27017" {
		t.Errorf("Database.ConnectionString = %q, want %q", cfg.Database.ConnectionString, "mongodb://db:27017")
	}
	if cfg.Database.Name != "pokedex" {
		t.Errorf("Database.Name = %q, want %q", cfg.Database.Name, "pokedex")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_TOML(t *testing.T) {
	clearOverrides(t)

	configPath := writeConfig(t, "config.toml", `
[server]
http_addr = "localhost:9090"
shutdown_timeout = "2s"

[database]
driver = "sqlite"
path = "/tmp/bestiary.db"
skip_seed = true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "localhost:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "localhost:9090")
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 2*time.Second)
	}
	if !cfg.Database.IsSQLite() {
		t.Errorf("Database.IsSQLite() = false for driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != "/tmp/bestiary.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/bestiary.db")
	}
	if !cfg.Database.SkipSeed {
		t.Error("Database.SkipSeed = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearOverrides(t)

	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "localhost:8080"
database:
  connection_string: "mongodb://localhost:27017"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != DriverMongo {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverMongo)
	}
	if cfg.Database.Name != DefaultDatabaseName {
		t.Errorf("Database.Name = %q, want %q", cfg.Database.Name, DefaultDatabaseName)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.Server.HealthInterval != DefaultHealthInterval {
		t.Errorf("Server.HealthInterval = %v, want %v", cfg.Server.HealthInterval, DefaultHealthInterval)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	clearOverrides(t)
	t.Setenv("TEST_MONGO_URI", "mongodb://from-env:27017")
	t.Setenv("TEST_TS_KEY", "tskey-from-env")

	configPath := writeConfig(t, "config.yaml", `
database:
  connection_string: "${TEST_MONGO_URI}"
  name: "bestiary"
tailscale:
  enabled: true
  hostname: "bestiary"
  auth_key: "${TEST_TS_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.ConnectionString != "mongodb://from-env:27017" {
		t.Errorf("Database.ConnectionString = %q, want %q", cfg.Database.ConnectionString, "mongodb://from-env:27017")
	}
	if cfg.Tailscale.AuthKey != "tskey-from-env" {
		t.Errorf("Tailscale.AuthKey = %q, want %q", cfg.Tailscale.AuthKey, "tskey-from-env")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvMongoURI, "mongodb://override:27017")
	t.Setenv(EnvDBPath, "/data/override.db")

	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "localhost:8080"
database:
  connection_string: "mongodb://file:27017"
  path: "./file.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.ConnectionString != "mongodb://override:27017" {
		t.Errorf("Database.ConnectionString = %q, want override", cfg.Database.ConnectionString)
	}
	if cfg.Database.Path != "/data/override.db" {
		t.Errorf("Database.Path = %q, want override", cfg.Database.Path)
	}
}

func TestLoad_EnvOverrideSatisfiesValidation(t *testing.T) {
	t.Setenv(EnvMongoURI, "mongodb://override:27017")
	t.Setenv(EnvDBPath, "")

	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "localhost:8080"
`)

	if _, err := Load(configPath); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearOverrides(t)
	configPath := writeConfig(t, "config.yaml", "server:\n  http_addr: [unclosed\n")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %q, want parsing error", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearOverrides(t)
	configPath := writeConfig(t, "config.toml", "[server\nhttp_addr = ")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearOverrides(t)

	tests := []struct {
		name  string
		field string
	}{
		{"shutdown timeout", "shutdown_timeout"},
		{"health interval", "health_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "localhost:8080"
  `+tt.field+`: "soon"
database:
  connection_string: "mongodb://localhost:27017"
`)

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error for invalid duration, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{HTTPAddr: "localhost:8080"},
			Database: DatabaseConfig{Driver: DriverMongo, ConnectionString: "mongodb://localhost", Name: "bestiary"},
			Logging:  LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid mongo",
			mutate: func(*Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name: "tailscale replaces http addr",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale = TailscaleConfig{Enabled: true, Hostname: "bestiary"}
			},
		},
		{
			name:    "tailscale without hostname",
			mutate:  func(c *Config) { c.Tailscale.Enabled = true },
			wantErr: "tailscale.hostname",
		},
		{
			name:    "mongo without connection string",
			mutate:  func(c *Config) { c.Database.ConnectionString = "" },
			wantErr: "database.connection_string",
		},
		{
			name:    "mongo without name",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: "database.name",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Driver = DriverSQLite },
			wantErr: "database.path",
		},
		{
			name: "sqlite3 with path",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverSQLite3, Path: "./bestiary.db"}
			},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "postgres" },
			wantErr: "database.driver",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "negative shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = -time.Second },
			wantErr: "server.shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_1", "value1")
	t.Setenv("TEST_VAR_2", "value2")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no vars", "plain text", "plain text"},
		{"single var", "prefix-${TEST_VAR_1}-suffix", "prefix-value1-suffix"},
		{"multiple vars", "${TEST_VAR_1} and ${TEST_VAR_2}", "value1 and value2"},
		{"unset var", "${DEFINITELY_UNSET_VAR_12345}", ""},
		{"bare dollar untouched", "$TEST_VAR_1", "$TEST_VAR_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/etc/bestiary/custom.yaml")
		if got := DefaultPath(); got != "/etc/bestiary/custom.yaml" {
			t.Errorf("DefaultPath() = %q, want env value", got)
		}
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		t.Chdir(t.TempDir())

		want := filepath.Join(xdg, "bestiary", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Errorf("DefaultPath() = %q, want %q", got, want)
		}
	})
}

func TestStarter_LoadsBack(t *testing.T) {
	clearOverrides(t)

	tests := []struct {
		name string
		opts func() StarterOptions
	}{
		{"mongo", DefaultStarterOptions},
		{"sqlite", func() StarterOptions {
			o := DefaultStarterOptions()
			o.Driver = DriverSQLite
			return o
		}},
		{"tailscale", func() StarterOptions {
			o := DefaultStarterOptions()
			o.Tailscale = true
			o.HTTPAddr = ""
			return o
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TS_AUTHKEY", "tskey-test")
			opts := tt.opts()
			path := filepath.Join(t.TempDir(), "nested", "config.yaml")

			if err := WriteStarter(path, Starter(opts), false); err != nil {
				t.Fatalf("WriteStarter() error = %v", err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() of generated config error = %v", err)
			}
			if cfg.Database.Driver != opts.Driver {
				t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, opts.Driver)
			}
			if cfg.Tailscale.Enabled != opts.Tailscale {
				t.Errorf("Tailscale.Enabled = %t, want %t", cfg.Tailscale.Enabled, opts.Tailscale)
			}
		})
	}
}

func TestWriteStarter_RefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "config.yaml", "original")

	err := WriteStarter(path, "replacement", false)
	if !errors.Is(err, ErrConfigExists) {
		t.Fatalf("WriteStarter() error = %v, want ErrConfigExists", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("file content = %q, want unchanged", data)
	}

	if err := WriteStarter(path, "replacement", true); err != nil {
		t.Fatalf("WriteStarter(force) error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "replacement" {
		t.Errorf("file content = %q, want replaced", data)
	}
}
