package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/export"
)

// CmdHistory shows and maintains the reading history. "clear" only hides
// readings from the session's display; "purge" deletes them from the store.
var CmdHistory = &cli.Command{
	Name:  "history",
	Usage: "Show or maintain the reading history",
	Commands: []*cli.Command{
		{
			Name:  "show",
			Usage: "Print the reading history",
			Flags: []cli.Flag{
				patientFlag(),
				&cli.IntFlag{
					Name:  "limit",
					Usage: "Print only the N most recent readings",
				},
			},
			Action: runHistoryShow,
		},
		{
			Name:   "clear",
			Usage:  "Hide existing readings from display without deleting them",
			Flags:  []cli.Flag{patientFlag()},
			Action: runHistoryClear,
		},
		{
			Name:   "purge",
			Usage:  "Permanently delete all readings for a patient",
			Flags:  []cli.Flag{patientFlag()},
			Action: runHistoryPurge,
		},
	},
}

func runHistoryShow(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	var since *time.Time
	if at, ok := a.session.HistoryClearedAt(patient.ID); ok {
		since = &at
	}

	readings, err := a.analysis.History(ctx, patient.ID, since)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		fmt.Printf("No readings for %s\n", patient.Name)
		return nil
	}

	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(readings) {
		readings = readings[len(readings)-limit:]
	}

	fmt.Printf("History for %s (%d readings)\n\n", patient.Name, len(readings))
	for _, r := range readings {
		fmt.Printf("  %s  %6.1f mg/dL  %-13s %s\n",
			r.Timestamp.Format(export.TimestampFormat), r.GlucoseValue, r.Status, r.Condition)
	}
	return nil
}

func runHistoryClear(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	a.session.MarkHistoryCleared(patient.ID, time.Now())
	fmt.Printf("Display cleared for %s; stored readings are untouched\n", patient.Name)
	return nil
}

func runHistoryPurge(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	if err := a.analysis.PurgeHistory(ctx, patient.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted all readings for %s\n", patient.Name)
	return nil
}
