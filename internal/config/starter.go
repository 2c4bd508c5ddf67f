// ABOUTME: Starter configuration generation for `bestiary init`
// ABOUTME: Renders a commented YAML config and writes it without clobbering existing files

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StarterOptions are the values written into a generated config
type StarterOptions struct {
	HTTPAddr         string
	GRPCAddr         string
	Driver           string
	ConnectionString string
	DatabaseName     string
	DatabasePath     string
	Tailscale        bool
	Hostname         string
}

// DefaultStarterOptions returns a local mongo setup
func DefaultStarterOptions() StarterOptions {
	return StarterOptions{
		HTTPAddr:         "localhost:8080",
		Driver:           DriverMongo,
		ConnectionString: "mongodb://localhost:27017",
		DatabaseName:     DefaultDatabaseName,
		DatabasePath:     "./bestiary.db",
		Hostname:         "bestiary",
	}
}

// Starter renders a YAML config for opts
func Starter(opts StarterOptions) string {
	var cfg strings.Builder
	cfg.WriteString("# bestiary configuration\n")
	cfg.WriteString("# Generated by bestiary init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", opts.HTTPAddr))
	cfg.WriteString(fmt.Sprintf("  grpc_addr: %q # gRPC health service, empty to disable\n", opts.GRPCAddr))
	cfg.WriteString(fmt.Sprintf("  shutdown_timeout: %q\n", DefaultShutdownTimeout.String()))
	cfg.WriteString(fmt.Sprintf("  health_interval: %q\n", DefaultHealthInterval.String()))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: %q # mongo | sqlite | sqlite3\n", opts.Driver))
	if opts.Driver == DriverMongo {
		cfg.WriteString(fmt.Sprintf("  connection_string: %q\n", opts.ConnectionString))
		cfg.WriteString(fmt.Sprintf("  name: %q\n", opts.DatabaseName))
	} else {
		cfg.WriteString(fmt.Sprintf("  path: %q\n", opts.DatabasePath))
	}
	cfg.WriteString("  skip_seed: false\n")
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", opts.Tailscale))
	if opts.Tailscale {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", opts.Hostname))
		cfg.WriteString("  auth_key: \"${TS_AUTHKEY}\"\n")
		cfg.WriteString("  ephemeral: false\n")
		cfg.WriteString("  funnel: false\n")
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString("  level: \"info\"\n")
	cfg.WriteString("  format: \"text\"\n")

	return cfg.String()
}

// WriteStarter writes content to path, creating parent directories.
// An existing file is only replaced when force is set.
func WriteStarter(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrConfigExists)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
