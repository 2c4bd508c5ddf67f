// ABOUTME: Entry point for the bestiary records server
// ABOUTME: Cobra root command wiring serve, init and health

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/bestiary/internal/config"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _               _   _
| |__   ___  ___| |_(_) __ _ _ __ _   _
| '_ \ / _ \/ __| __| |/ _' | '__| | | |
| |_) |  __/\__ \ |_| | (_| | |  | |_| |
|_.__/ \___||___/\__|_|\__,_|_|   \__, |
                                  |___/
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bestiary",
		Short:   "bestiary - HTTP API for creature records",
		Version: version,
		Long: `bestiary serves a small CRUD API over a collection of creature records
stored in MongoDB or SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: $BESTIARY_CONFIG, ./config.yaml, ~/.config/bestiary/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(healthCmd())

	return rootCmd
}

// configPath returns the --config flag value or the default location
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}
