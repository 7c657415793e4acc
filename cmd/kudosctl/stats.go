package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"kudos/internal/domain/feedback"
	"kudos/internal/domain/period"
	"kudos/internal/transport/http/shared"
)

type statsReport struct {
	EmployeeID string                  `json:"employeeId"`
	Period     period.Period           `json:"period"`
	Since      string                  `json:"since,omitempty"`
	Stats      feedback.Stats          `json:"stats"`
	Categories []feedback.CategoryStat `json:"categories"`
	Badges     []feedback.Badge        `json:"badges"`
}

// loadEvents reads a legacy export and keeps the events at or after since.
func loadEvents(path string, since time.Time) ([]feedback.Event, error) {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	}
	rows, err := shared.DecodeLegacy(reader)
	if err != nil {
		return nil, err
	}
	events := make([]feedback.Event, 0, len(rows))
	for _, row := range rows {
		ev := row.Event()
		if !since.IsZero() && ev.Timestamp.Before(since) {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}

type windowFlags struct {
	file      string
	rawPeriod string
	rawNow    string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "-", "legacy JSON export (- for stdin)")
	cmd.Flags().StringVarP(&f.rawPeriod, "period", "p", string(period.All), "period token: all, ytd, 1y, 6m, 3m, 1m")
	cmd.Flags().StringVar(&f.rawNow, "now", "", "reference time (default: current time)")
}

func (f *windowFlags) resolve() (period.Period, time.Time, time.Time, bool, error) {
	now, err := parseNow(f.rawNow)
	if err != nil {
		return "", time.Time{}, time.Time{}, false, err
	}
	p := period.Parse(f.rawPeriod)
	since, ok := period.ResolveSince(p, now)
	return p, now, since, ok, nil
}

func newStatsCmd() *cobra.Command {
	var (
		flags    windowFlags
		employee string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute the rating of one employee from a legacy export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if employee == "" {
				return fmt.Errorf("--employee is required")
			}
			p, now, since, ok, err := flags.resolve()
			if err != nil {
				return err
			}
			events, err := loadEvents(flags.file, since)
			if err != nil {
				return err
			}
			own := make([]feedback.Event, 0, len(events))
			for _, ev := range events {
				if ev.EmployeeID == employee {
					own = append(own, ev)
				}
			}

			engine := feedback.NewEngine(cfg.Rating)
			return writeJSON(cmd.OutOrStdout(), statsReport{
				EmployeeID: employee,
				Period:     p,
				Since:      period.FormatSince(since, ok),
				Stats:      engine.Compute(own),
				Categories: engine.Categories(own),
				Badges:     feedback.Badges(own, now, cfg.BadgeWindow),
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "employee id")
	return cmd
}

func newRankCmd() *cobra.Command {
	var flags windowFlags
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank every employee in a legacy export by share of red points",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, since, _, err := flags.resolve()
			if err != nil {
				return err
			}
			events, err := loadEvents(flags.file, since)
			if err != nil {
				return err
			}

			names := map[string]string{}
			for _, ev := range events {
				if _, seen := names[ev.EmployeeID]; !seen || ev.EmployeeName != "" {
					names[ev.EmployeeID] = ev.EmployeeName
				}
			}
			members := make([]feedback.Member, 0, len(names))
			for id, name := range names {
				members = append(members, feedback.Member{ID: id, Name: name})
			}
			sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

			return writeJSON(cmd.OutOrStdout(), feedback.NewEngine(cfg.Rating).Team(members, events))
		},
	}
	flags.register(cmd)
	return cmd
}
