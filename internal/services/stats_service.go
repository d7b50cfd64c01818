package services

import (
	"context"
	"time"

	"github.com/glucolab/glucometer/internal/analysis"
	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
)

type StatsService struct {
	repo domain.Repository
}

func NewStatsService(repo domain.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// Refresh recomputes the dashboard metrics for the trailing window. The
// repository query is already scoped to the window's lower bound; the
// calculator applies the exact inclusive bounds on top.
func (s *StatsService) Refresh(ctx context.Context, patientID uint, windowDays int) (domain.StatsReport, error) {
	if windowDays <= 0 {
		windowDays = analysis.DefaultWindowDays
	}

	now := time.Now()
	since := now.AddDate(0, 0, -windowDays)
	readings, err := s.repo.ListReadings(ctx, patientID, &since)
	if err != nil {
		return domain.StatsReport{}, apperrors.NewDatabaseError(err)
	}

	return analysis.ComputeStatistics(readings, windowDays, now), nil
}
