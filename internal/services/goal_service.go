package services

import (
	"context"
	"time"

	"github.com/glucolab/glucometer/internal/analysis"
	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
	"github.com/glucolab/glucometer/internal/logger"
)

type GoalService struct {
	repo domain.Repository
}

func NewGoalService(repo domain.Repository) *GoalService {
	return &GoalService{repo: repo}
}

// AddGoal validates and stores a new goal. Its progress starts at zero and
// is first materialized by the next RefreshGoals call.
func (s *GoalService) AddGoal(ctx context.Context, patientID uint, goalType domain.GoalType, target float64, start, end time.Time) (*domain.Goal, error) {
	if !goalType.Valid() {
		return nil, apperrors.ErrInvalidGoal.WithContext("goal_type", string(goalType))
	}
	if target < 0 {
		return nil, apperrors.NewValidationError("goal target must not be negative")
	}
	if !start.Before(end) {
		return nil, apperrors.NewValidationError("goal start date must be before end date")
	}

	goal := &domain.Goal{
		PatientID:   patientID,
		GoalType:    goalType,
		TargetValue: target,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.repo.UpsertGoal(ctx, goal); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return goal, nil
}

// ListGoals returns the patient's goals as stored, without re-evaluating.
func (s *GoalService) ListGoals(ctx context.Context, patientID uint) ([]domain.Goal, error) {
	goals, err := s.repo.ListGoals(ctx, patientID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return goals, nil
}

// RefreshGoals re-evaluates every goal of the patient against the current
// reading history and writes the derived current value and achieved flag
// back through the repository. The stored fields are materialized views,
// never the source of truth.
func (s *GoalService) RefreshGoals(ctx context.Context, patientID uint) ([]domain.Goal, error) {
	goals, err := s.repo.ListGoals(ctx, patientID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(goals) == 0 {
		return nil, nil
	}

	readings, err := s.repo.ListReadings(ctx, patientID, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	for i := range goals {
		progress := analysis.EvaluateGoal(goals[i], readings)
		goals[i].CurrentValue = progress.CurrentValue
		goals[i].Achieved = progress.Achieved
		if err := s.repo.UpsertGoal(ctx, &goals[i]); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	logger.Debug("Goals refreshed", "patient_id", patientID, "count", len(goals))
	return goals, nil
}
