package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"kudos/internal/platform/config"
)

var (
	Version = "dev"

	verbose bool
	cfg     config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "kudosctl",
	Short:         "Offline tools for kudos feedback data",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		cfg = config.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newSinceCmd())
	rootCmd.AddCommand(migrateCmd)
}

// parseNow reads a --now override. Empty means the current time.
func parseNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --now %q, want RFC3339 or YYYY-MM-DD", raw)
}
