package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/domain"
)

// CmdAnalyze submits a glucose reading: classify, persist, print the verdict.
var CmdAnalyze = &cli.Command{
	Name:  "analyze",
	Usage: "Classify and record a new glucose reading",
	Flags: []cli.Flag{
		patientFlag(),
		&cli.FloatFlag{
			Name:     "value",
			Usage:    "Glucose value in mg/dL",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "condition",
			Usage: "Patient condition: Normal, Diabetic or Fasting",
			Value: string(domain.ConditionNormal),
		},
	},
	Action: runAnalyze,
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	verdict, reading, err := a.analysis.SubmitReading(ctx, patient.ID, cmd.Float("value"), domain.Condition(cmd.String("condition")))
	if err != nil {
		return err
	}

	fmt.Printf("Patient:   %s\n", patient.Name)
	fmt.Printf("Reading:   %.1f mg/dL at %s\n", reading.GlucoseValue, reading.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Status:    %s (severity %d)\n", verdict.Status, verdict.SeverityRank)
	fmt.Printf("Message:   %s\n", verdict.Message)
	fmt.Printf("Alarm:     %s", verdict.Alarm)
	if verdict.Flashing {
		fmt.Print(" (flashing)")
	}
	fmt.Println()
	return nil
}
