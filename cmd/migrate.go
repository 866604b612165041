package main

import (
	"github.com/spf13/cobra"

	"github.com/victornm/tutormate/internal/server"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return server.Migrate(cmd.Context(), c)
	},
}
