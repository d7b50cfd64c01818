package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/analysis"
	"github.com/glucolab/glucometer/internal/domain"
	"github.com/glucolab/glucometer/internal/export"
)

// CmdExport renders the reading history as CSV, JSON or a PDF report. All
// formats consume the same ascending sequence, so they always agree.
var CmdExport = &cli.Command{
	Name:  "export",
	Usage: "Export the reading history",
	Commands: []*cli.Command{
		{
			Name:   "csv",
			Usage:  "Export readings as CSV",
			Flags:  exportFlags(),
			Action: exportAction("csv"),
		},
		{
			Name:   "json",
			Usage:  "Export readings as JSON",
			Flags:  exportFlags(),
			Action: exportAction("json"),
		},
		{
			Name:   "pdf",
			Usage:  "Export a PDF summary report",
			Flags:  exportFlags(),
			Action: exportAction("pdf"),
		},
	},
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		patientFlag(),
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file path (defaults to <patient>_glucose_readings.<format>)",
		},
	}
}

func exportAction(format string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		patient, err := a.resolvePatient(ctx, cmd)
		if err != nil {
			return err
		}

		readings, err := a.analysis.History(ctx, patient.ID, nil)
		if err != nil {
			return err
		}
		if len(readings) == 0 {
			return fmt.Errorf("no data to export for %s", patient.Name)
		}

		path := cmd.String("out")
		if path == "" {
			name := strings.ReplaceAll(patient.Name, " ", "_")
			path = fmt.Sprintf("%s_glucose_readings.%s", name, format)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		now := time.Now()
		switch format {
		case "csv":
			err = export.WriteCSV(f, readings)
		case "json":
			err = export.WriteJSON(f, patient.Name, now, readings)
		case "pdf":
			stats := analysisStats(a, readings, now)
			err = export.WritePDF(f, patient.Name, now, readings, stats)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d readings to %s\n", len(readings), path)
		return nil
	}
}

// analysisStats summarizes the full history for the PDF report; the report
// covers everything exported, not just the dashboard window.
func analysisStats(a *app, readings []domain.Reading, now time.Time) domain.StatsReport {
	windowDays := 1
	if len(readings) > 0 {
		span := now.Sub(readings[0].Timestamp)
		windowDays = int(span.Hours()/24) + 1
	}
	return analysis.ComputeStatistics(readings, windowDays, now)
}
