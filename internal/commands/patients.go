package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/domain"
)

// CmdPatients manages patient profiles and the session's active patient.
var CmdPatients = &cli.Command{
	Name:  "patients",
	Usage: "Manage patient profiles",
	Commands: []*cli.Command{
		{
			Name:  "add",
			Usage: "Register a new patient",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Usage:    "Patient name",
					Required: true,
				},
				&cli.IntFlag{
					Name:  "age",
					Usage: "Patient age in years",
				},
				&cli.StringFlag{
					Name:  "diabetes-type",
					Usage: "Diabetes type: Normal, Type 1, Type 2, Gestational or Pre-diabetic",
					Value: string(domain.DiabetesNone),
				},
			},
			Action: runPatientAdd,
		},
		{
			Name:   "list",
			Usage:  "List registered patients",
			Action: runPatientList,
		},
		{
			Name:      "use",
			Usage:     "Set the session's active patient",
			ArgsUsage: "<name>",
			Action:    runPatientUse,
		},
		{
			Name:  "set-targets",
			Usage: "Update a patient's target glucose range",
			Flags: []cli.Flag{
				patientFlag(),
				&cli.FloatFlag{
					Name:     "min",
					Usage:    "Lower bound of the target range in mg/dL",
					Required: true,
				},
				&cli.FloatFlag{
					Name:     "max",
					Usage:    "Upper bound of the target range in mg/dL",
					Required: true,
				},
			},
			Action: runPatientSetTargets,
		},
	},
}

func runPatientAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.patients.RegisterPatient(ctx, cmd.String("name"), int(cmd.Int("age")), domain.DiabetesType(cmd.String("diabetes-type")))
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s (target range %.0f-%.0f mg/dL)\n", patient.Name, patient.TargetMin, patient.TargetMax)
	return nil
}

func runPatientList(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patients, err := a.patients.ListPatients(ctx)
	if err != nil {
		return err
	}

	activeID, hasActive := a.session.ActivePatient()
	for _, p := range patients {
		marker := " "
		if hasActive && p.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s #%d %s (target %.0f-%.0f mg/dL)\n", marker, p.ID, p.Name, p.TargetMin, p.TargetMax)
	}
	return nil
}

func runPatientUse(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("patient name is required")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.patients.GetPatientByName(ctx, name)
	if err != nil {
		return err
	}

	a.session.SetActivePatient(patient.ID)
	fmt.Printf("Active patient is now %s\n", patient.Name)
	return nil
}

func runPatientSetTargets(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	targetMin := cmd.Float("min")
	targetMax := cmd.Float("max")
	if err := a.patients.UpdateTargets(ctx, patient.ID, targetMin, targetMax); err != nil {
		return err
	}

	fmt.Printf("Updated target range for %s to %.0f-%.0f mg/dL\n", patient.Name, targetMin, targetMax)
	return nil
}
