package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/domain"
)

const dateLayout = "2006-01-02"

// CmdGoals manages health goals and their derived progress.
var CmdGoals = &cli.Command{
	Name:  "goals",
	Usage: "Manage health goals",
	Commands: []*cli.Command{
		{
			Name:  "add",
			Usage: "Create a new goal",
			Flags: []cli.Flag{
				patientFlag(),
				&cli.StringFlag{
					Name:     "type",
					Usage:    "Goal type: time_in_range_pct, average_below, reduce_critical_events, reading_count or consistency_days",
					Required: true,
				},
				&cli.FloatFlag{
					Name:     "target",
					Usage:    "Target value",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "start",
					Usage: "Start date (YYYY-MM-DD), defaults to today",
				},
				&cli.StringFlag{
					Name:  "end",
					Usage: "End date (YYYY-MM-DD), defaults to 30 days from start",
				},
			},
			Action: runGoalAdd,
		},
		{
			Name:   "list",
			Usage:  "List goals with their stored progress",
			Flags:  []cli.Flag{patientFlag()},
			Action: runGoalList,
		},
		{
			Name:   "refresh",
			Usage:  "Re-evaluate all goals against the reading history",
			Flags:  []cli.Flag{patientFlag()},
			Action: runGoalRefresh,
		},
	},
}

func runGoalAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	if s := cmd.String("start"); s != "" {
		start, err = time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
	}
	end := start.AddDate(0, 0, 30)
	if s := cmd.String("end"); s != "" {
		end, err = time.Parse(dateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		// Goals run through the end of their last day.
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	goal, err := a.goals.AddGoal(ctx, patient.ID, domain.GoalType(cmd.String("type")), cmd.Float("target"), start, end)
	if err != nil {
		return err
	}

	fmt.Printf("Created goal #%d (%s, target %.1f) for %s\n", goal.ID, goal.GoalType, goal.TargetValue, patient.Name)
	return nil
}

func runGoalList(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	goals, err := a.goals.ListGoals(ctx, patient.ID)
	if err != nil {
		return err
	}

	printGoals(patient.Name, goals)
	return nil
}

func runGoalRefresh(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	patient, err := a.resolvePatient(ctx, cmd)
	if err != nil {
		return err
	}

	goals, err := a.goals.RefreshGoals(ctx, patient.ID)
	if err != nil {
		return err
	}

	printGoals(patient.Name, goals)
	return nil
}

func printGoals(patientName string, goals []domain.Goal) {
	if len(goals) == 0 {
		fmt.Printf("No goals set for %s\n", patientName)
		return
	}

	fmt.Printf("Goals for %s\n\n", patientName)
	for _, g := range goals {
		achieved := " "
		if g.Achieved {
			achieved = "x"
		}
		fmt.Printf("  [%s] #%d %s: current %.1f / target %.1f (%s to %s)\n",
			achieved, g.ID, g.GoalType, g.CurrentValue, g.TargetValue,
			g.StartDate.Format(dateLayout), g.EndDate.Format(dateLayout))
	}
}
