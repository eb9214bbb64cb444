package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weather-history-app/internal/dates"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <date>",
		Short: "Check that a date is a real YYYY-MM-DD calendar date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dates.Validate(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
			return nil
		},
	}
}
