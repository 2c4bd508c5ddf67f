// ABOUTME: init subcommand writing a starter configuration file
// ABOUTME: Flags override the defaults; refuses to overwrite without --force

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389/bestiary/internal/config"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a starter config file to --config (or the default location).

Usage:
  bestiary init                            # local mongo on :27017
  bestiary init --driver sqlite            # SQLite file, no server needed
  bestiary init --tailscale --force        # replace an existing config`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	defaults := config.DefaultStarterOptions()
	cmd.Flags().String("http-addr", defaults.HTTPAddr, "HTTP listen address")
	cmd.Flags().String("grpc-addr", "", "gRPC health listen address (empty disables)")
	cmd.Flags().String("driver", defaults.Driver, "store driver: mongo, sqlite or sqlite3")
	cmd.Flags().String("mongo-uri", defaults.ConnectionString, "MongoDB connection string")
	cmd.Flags().String("db-name", defaults.DatabaseName, "MongoDB database name")
	cmd.Flags().String("db-path", defaults.DatabasePath, "SQLite database file")
	cmd.Flags().Bool("tailscale", false, "serve on a tailnet via tsnet")
	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	opts := config.DefaultStarterOptions()
	opts.HTTPAddr, _ = cmd.Flags().GetString("http-addr")
	opts.GRPCAddr, _ = cmd.Flags().GetString("grpc-addr")
	opts.Driver, _ = cmd.Flags().GetString("driver")
	opts.ConnectionString, _ = cmd.Flags().GetString("mongo-uri")
	opts.DatabaseName, _ = cmd.Flags().GetString("db-name")
	opts.DatabasePath, _ = cmd.Flags().GetString("db-path")
	opts.Tailscale, _ = cmd.Flags().GetBool("tailscale")
	force, _ := cmd.Flags().GetBool("force")

	switch opts.Driver {
	case config.DriverMongo, config.DriverSQLite, config.DriverSQLite3:
	default:
		return fmt.Errorf("unknown driver %q (use mongo, sqlite or sqlite3)", opts.Driver)
	}

	path := configPath(cmd)
	if err := config.WriteStarter(path, config.Starter(opts), force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config written to %s\n", path)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintf(out, "  bestiary serve --config %s\n", path)
	return nil
}
