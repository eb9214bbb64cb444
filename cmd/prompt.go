package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/session"
)

const invalidDateMessage = "Please enter a valid date in YYYY-MM-DD format"

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Interactive lookup: enter a city and a date, see the temperatures",
		Long: `Reads a city and a date from standard input, fetches the recorded
temperatures and shows them. Failed lookups keep the previous values on
screen. An empty city or end of input quits.`,
		Args: cobra.NoArgs,
		RunE: runPrompt,
	}
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	_, d, err := startLookup(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer stopLookup(d)

	sess := session.New(d, session.Options{SupersedeInFlight: cfg.Weather.SupersedeInFlight}, log)

	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		city, ok := ask(in, out, "City: ")
		if !ok || city == "" {
			return nil
		}
		sess.SetCity(city)

		date, ok := ask(in, out, "Date (YYYY-MM-DD): ")
		if !ok {
			return nil
		}
		if !sess.SetDate(date) {
			fmt.Fprintln(out, invalidDateMessage)
			continue
		}

		select {
		case <-sess.Submit(cmd.Context()):
		case <-cmd.Context().Done():
			return nil
		}

		render(out, sess.Snapshot())
	}
}

func ask(in *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func render(out io.Writer, st session.State) {
	if st.Phase == session.Failed && st.LastError != nil {
		fmt.Fprintf(out, "Lookup failed (%s): %s\n", st.LastError.Kind, st.LastError.Message)
	}
	fmt.Fprintf(out, "Max Temperature: %s\n", st.MaxTemp)
	fmt.Fprintf(out, "Min Temperature: %s\n", st.MinTemp)
}
