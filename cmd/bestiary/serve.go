// ABOUTME: serve subcommand: load config, open the store, run the gateway
// ABOUTME: Prints a short colorized startup summary before blocking

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/bestiary/internal/config"
	"github.com/2389/bestiary/internal/gateway"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the records server",
		Long: `Load the config, connect to the record store, seed it if empty and
serve the HTTP API until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	path := configPath(cmd)

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", path)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s\n", describeStore(cfg.Database))
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	if cfg.Server.GRPCAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("gRPC:      %s (health)\n", cfg.Server.GRPCAddr)
	}

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting bestiary",
		"config", path,
		"driver", cfg.Database.Driver,
		"http_addr", cfg.Server.HTTPAddr,
	)

	s, err := gateway.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gw, err := gateway.New(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

// describeStore renders the backend for the startup banner without credentials
func describeStore(db config.DatabaseConfig) string {
	if db.IsSQLite() {
		return fmt.Sprintf("%s (%s)", db.Path, db.Driver)
	}
	return fmt.Sprintf("mongo database %q", db.Name)
}
