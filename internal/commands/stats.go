package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/domain"
)

// CmdStats prints the statistics dashboard for the trailing window.
var CmdStats = &cli.Command{
	Name:  "stats",
	Usage: "Recompute and print the statistics dashboard",
	Flags: []cli.Flag{
		patientFlag(),
		&cli.IntFlag{
			Name:    "window-days",
			Usage:   "Trailing window in days",
			Sources: cli.EnvVars("STATS_WINDOW_DAYS"),
		},
	},
	Action: runStats,
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	windowDays := a.windowDays(cmd)
	if cmd.IsSet("window-days") {
		// An explicit window sticks for the rest of the session.
		a.session.SetWindowDays(windowDays)
	}
	report, err := a.stats.Refresh(ctx, patient.ID, windowDays)
	if err != nil {
		return err
	}

	fmt.Printf("Statistics for %s (last %d days)\n\n", patient.Name, windowDays)
	fmt.Printf("  Readings:       %d\n", report.Count)
	fmt.Printf("  Average:        %s\n", formatStat(report.Average, "%.1f mg/dL"))
	fmt.Printf("  Median:         %s\n", formatStat(report.Median, "%.1f mg/dL"))
	fmt.Printf("  Std Dev:        %s\n", formatStat(report.StdDev, "%.1f"))
	fmt.Printf("  Min:            %s\n", formatStat(report.Min, "%.1f mg/dL"))
	fmt.Printf("  Max:            %s\n", formatStat(report.Max, "%.1f mg/dL"))
	fmt.Printf("  Time in Range:  %s\n", formatStat(report.TimeInRangePct, "%.1f%%"))
	fmt.Printf("  Estimated A1C:  %s\n", formatStat(report.EstimatedA1C, "%.1f%%"))
	fmt.Println()
	for _, status := range domain.Statuses {
		fmt.Printf("  %-14s %d\n", status+":", report.StatusCounts[status])
	}
	return nil
}

// formatStat renders an undefined statistic as "--", never as zero.
func formatStat(value *float64, format string) string {
	if value == nil {
		return "--"
	}
	return fmt.Sprintf(format, *value)
}
