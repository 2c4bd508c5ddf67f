// Package config handles configuration loading for bestiary.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Files ending in .toml are decoded as TOML; anything else is YAML.
// The package applies defaults, environment overrides and validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BESTIARY_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. $XDG_CONFIG_HOME/bestiary/config.yaml (~/.config when unset)
//
// # Environment Variables
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Unset variables expand to the empty string. After parsing,
// BESTIARY_MONGO_URI replaces database.connection_string and
// BESTIARY_DB_PATH replaces database.path when set.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "localhost:8080"
//	  grpc_addr: ""            # gRPC health service, optional
//	  shutdown_timeout: "5s"
//	  health_interval: "10s"   # store ping cadence for gRPC health
//
// Database settings:
//
//	database:
//	  driver: "mongo"          # mongo | sqlite | sqlite3
//	  connection_string: "mongodb://localhost:27017"
//	  name: "bestiary"
//	  path: "./bestiary.db"    # sqlite drivers
//	  skip_seed: false
//
// Tailscale and logging follow the same layout:
//
//	tailscale:
//	  enabled: false
//	  hostname: "bestiary"
//	logging:
//	  level: "info"            # debug, info, warn, error
//	  format: "text"           # text, json
//
// # Validation
//
// Load rejects configs without server.http_addr (unless Tailscale is
// enabled), Tailscale without a hostname, mongo without connection_string
// or name, and the SQLite drivers without a path.
package config
