package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victornm/tutormate/internal/server"
)

var resetAttemptsCmd = &cobra.Command{
	Use:   "reset-attempts",
	Short: "Delete every recorded game attempt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		n, err := server.ResetAttempts(cmd.Context(), c)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d attempts.\n", n)
		return nil
	},
}
