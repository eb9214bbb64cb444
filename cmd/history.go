package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/dispatcher"
	"github.com/vzahanych/weather-history-app/internal/service"
)

func historyCmd() *cobra.Command {
	var city, date string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Look up the max and min temperature for a city on a date",
		Example: `  weather history --city London --date 2023-06-01`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, city, date)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city name as understood by weatherapi.com")
	cmd.Flags().StringVar(&date, "date", "", "calendar date in YYYY-MM-DD format")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// runHistory prints the temperatures on success. A failure is returned so
// cobra reports its kind on stderr and the process exits non-zero.
func runHistory(cmd *cobra.Command, city, date string) error {
	q, ferr := service.NewQuery(city, date)
	if ferr != nil {
		return ferr
	}

	_, d, err := startLookup(cmd.Context(), config.GetConfig())
	if err != nil {
		return err
	}
	defer stopLookup(d)

	resultCh, err := d.Submit(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("failed to submit lookup: %w", err)
	}

	outcome, ok := <-resultCh
	if !ok {
		return dispatcher.ErrStopped
	}

	outcome.Match(func(f service.Forecast) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Max Temperature: %s\n", f.MaxTemp())
		fmt.Fprintf(out, "Min Temperature: %s\n", f.MinTemp())
	}, func(ferr *service.FetchError) {
		log.Debug("History lookup failed", zap.Stringer("query", q), zap.Error(ferr))
	})

	if ferr := outcome.Err(); ferr != nil {
		return ferr
	}
	return nil
}
