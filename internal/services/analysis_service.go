package services

import (
	"context"
	"time"

	"github.com/glucolab/glucometer/internal/analysis"
	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
	"github.com/glucolab/glucometer/internal/logger"
)

// MaxPlausibleGlucose is the upper bound of the meter's measurable domain,
// mg/dL. The measurable domain is (0, 1000]: the classifier itself accepts
// any finite non-negative value, plausibility is enforced here, before
// persistence.
const MaxPlausibleGlucose = 1000.0

type AnalysisService struct {
	repo domain.Repository
}

func NewAnalysisService(repo domain.Repository) *AnalysisService {
	return &AnalysisService{repo: repo}
}

// SubmitReading classifies a new glucose value and, on success, appends it
// to the patient's history. The stored status is the verdict computed here
// and is never recomputed later, even if classification thresholds change;
// historical readings keep their audit trail. Nothing is persisted when
// classification or validation fails.
func (s *AnalysisService) SubmitReading(ctx context.Context, patientID uint, value float64, condition domain.Condition) (*domain.Verdict, *domain.Reading, error) {
	verdict, err := analysis.Classify(value, condition)
	if err != nil {
		return nil, nil, err
	}
	if value <= 0 || value > MaxPlausibleGlucose {
		return nil, nil, apperrors.ErrImplausibleValue.WithContext("value", value)
	}

	reading := &domain.Reading{
		PatientID:    patientID,
		GlucoseValue: value,
		Status:       verdict.Status,
		Condition:    condition,
		Timestamp:    time.Now(),
	}
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		return nil, nil, apperrors.NewDatabaseError(err)
	}

	logger.Debug("Reading recorded",
		"patient_id", patientID,
		"value", value,
		"status", verdict.Status,
		"alarm", verdict.Alarm,
	)
	return &verdict, reading, nil
}

// History returns the patient's readings, oldest first, optionally limited
// to those at or after since.
func (s *AnalysisService) History(ctx context.Context, patientID uint, since *time.Time) ([]domain.Reading, error) {
	readings, err := s.repo.ListReadings(ctx, patientID, since)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return readings, nil
}

// PurgeHistory permanently deletes the patient's readings. Distinct from the
// session-level clear, which only hides readings from the display.
func (s *AnalysisService) PurgeHistory(ctx context.Context, patientID uint) error {
	if err := s.repo.PurgeReadings(ctx, patientID); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	logger.Warn("Reading history purged", "patient_id", patientID)
	return nil
}
