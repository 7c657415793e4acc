package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kudos/internal/domain/period"
)

func newSinceCmd() *cobra.Command {
	var (
		rawPeriod string
		rawNow    string
	)
	cmd := &cobra.Command{
		Use:   "since",
		Short: "Print the lower bound of a reporting period",
		Long: `Prints the inclusive lower bound of the period in RFC3339 UTC,
or "all" when the period has no bound.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(rawNow)
			if err != nil {
				return err
			}
			since := period.FormatSince(period.ResolveSince(period.Parse(rawPeriod), now))
			if since == "" {
				since = string(period.All)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), since)
			return err
		},
	}
	cmd.Flags().StringVarP(&rawPeriod, "period", "p", string(period.All), "period token: all, ytd, 1y, 6m, 3m, 1m")
	cmd.Flags().StringVar(&rawNow, "now", "", "reference time (default: current time)")
	return cmd
}
