package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/victornm/tutormate/internal/config"
	"github.com/victornm/tutormate/internal/server"
	"github.com/victornm/tutormate/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:          "tutormate",
	Short:        "Game rotation and AI tutoring backend",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (overrides CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resetAttemptsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the --config file, falling back to CONFIG_PATH, over the
// defaults, and installs the configured logger.
func loadConfig(cmd *cobra.Command) (server.Config, error) {
	c := server.DefaultConfig()

	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		p = os.Getenv("CONFIG_PATH")
	}

	if err := config.Load(p, &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(telemetry.NewLogger(os.Stderr, c.Log))
	return c, nil
}
