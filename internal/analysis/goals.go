package analysis

import (
	"github.com/glucolab/glucometer/internal/domain"
)

// GoalProgress is the evaluator's result for one goal.
type GoalProgress struct {
	CurrentValue float64
	Achieved     bool
}

// EvaluateGoal recomputes a goal's progress from the reading history. Only
// readings inside [goal.StartDate, goal.EndDate] (inclusive) count. A goal
// whose statistic is undefined (no readings for average-below or
// time-in-range) is never achieved: a goal with no data cannot be satisfied.
//
// Comparison direction depends on the goal type: average-below and
// reduce-critical-events want the current value at or below the target,
// everything else wants it at or above.
func EvaluateGoal(goal domain.Goal, readings []domain.Reading) GoalProgress {
	inRange := filterByDate(readings, goal)

	switch goal.GoalType {
	case domain.GoalTimeInRange:
		if len(inRange) == 0 {
			return GoalProgress{}
		}
		normal := 0
		for _, r := range inRange {
			if r.Status == domain.StatusNormal {
				normal++
			}
		}
		pct := 100 * float64(normal) / float64(len(inRange))
		return GoalProgress{CurrentValue: pct, Achieved: pct >= goal.TargetValue}

	case domain.GoalAverageBelow:
		if len(inRange) == 0 {
			return GoalProgress{}
		}
		values := make([]float64, len(inRange))
		for i, r := range inRange {
			values[i] = r.GlucoseValue
		}
		avg := mean(values)
		return GoalProgress{CurrentValue: avg, Achieved: avg <= goal.TargetValue}

	case domain.GoalReduceCritical:
		critical := 0
		for _, r := range inRange {
			if r.Status == domain.StatusCriticalLow || r.Status == domain.StatusCriticalHigh {
				critical++
			}
		}
		return GoalProgress{CurrentValue: float64(critical), Achieved: float64(critical) <= goal.TargetValue}

	case domain.GoalReadingCount:
		count := len(inRange)
		return GoalProgress{CurrentValue: float64(count), Achieved: float64(count) >= goal.TargetValue}

	case domain.GoalConsistencyDays:
		days := make(map[string]struct{})
		for _, r := range inRange {
			days[r.Timestamp.Format("2006-01-02")] = struct{}{}
		}
		n := len(days)
		return GoalProgress{CurrentValue: float64(n), Achieved: float64(n) >= goal.TargetValue}
	}

	// Unknown goal types evaluate to not achieved rather than failing; the
	// service layer validates types before they are ever stored.
	return GoalProgress{}
}

func filterByDate(readings []domain.Reading, goal domain.Goal) []domain.Reading {
	var out []domain.Reading
	for _, r := range readings {
		if r.Timestamp.Before(goal.StartDate) || r.Timestamp.After(goal.EndDate) {
			continue
		}
		out = append(out, r)
	}
	return out
}
