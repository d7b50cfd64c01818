// Package repository provides the GORM-backed implementation of
// domain.Repository for PostgreSQL deployments.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/glucolab/glucometer/internal/database"
	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
)

// GormRepository implements domain.Repository on top of a GORM connection.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-backed repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// GetOrCreatePatient returns the patient with the given name, creating it
// with the supplied defaults if it does not exist.
func (r *GormRepository) GetOrCreatePatient(ctx context.Context, name string, defaults domain.PatientDefaults) (*domain.Patient, error) {
	var record database.Patient
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&record)
	if result.Error == nil {
		return toDomainPatient(&record), nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up patient: %w", result.Error)
	}

	record = database.Patient{
		Name:         name,
		Age:          defaults.Age,
		DiabetesType: string(defaults.DiabetesType),
		TargetMin:    defaults.TargetMin,
		TargetMax:    defaults.TargetMax,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	return toDomainPatient(&record), nil
}

// GetPatientByName returns the patient with the given name.
func (r *GormRepository) GetPatientByName(ctx context.Context, name string) (*domain.Patient, error) {
	var record database.Patient
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewPatientNotFound(name)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return toDomainPatient(&record), nil
}

// ListPatients returns all patients ordered by creation time.
func (r *GormRepository) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	var records []database.Patient
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	patients := make([]domain.Patient, len(records))
	for i := range records {
		patients[i] = *toDomainPatient(&records[i])
	}
	return patients, nil
}

// UpdatePatientTargets updates a patient's target range.
func (r *GormRepository) UpdatePatientTargets(ctx context.Context, patientID uint, targetMin, targetMax float64) error {
	result := r.db.WithContext(ctx).
		Model(&database.Patient{}).
		Where("id = ?", patientID).
		Updates(map[string]interface{}{
			"target_min": targetMin,
			"target_max": targetMax,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update patient targets: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("patient", fmt.Sprintf("id=%d", patientID))
	}
	return nil
}

// InsertReading persists a new reading and backfills the generated ID.
func (r *GormRepository) InsertReading(ctx context.Context, reading *domain.Reading) error {
	record := database.Reading{
		PatientID:    reading.PatientID,
		GlucoseValue: reading.GlucoseValue,
		Status:       string(reading.Status),
		Condition:    string(reading.Condition),
		Timestamp:    reading.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	reading.ID = record.ID
	return nil
}

// ListReadings returns a patient's readings in ascending timestamp order,
// optionally restricted to those at or after since.
func (r *GormRepository) ListReadings(ctx context.Context, patientID uint, since *time.Time) ([]domain.Reading, error) {
	query := r.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}

	// ID breaks ties between equal timestamps so the order matches the
	// sqlite backend and exports stay stable.
	var records []database.Reading
	if err := query.Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	readings := make([]domain.Reading, len(records))
	for i, rec := range records {
		readings[i] = domain.Reading{
			ID:           rec.ID,
			PatientID:    rec.PatientID,
			GlucoseValue: rec.GlucoseValue,
			Status:       domain.Status(rec.Status),
			Condition:    domain.Condition(rec.Condition),
			Timestamp:    rec.Timestamp,
		}
	}
	return readings, nil
}

// PurgeReadings permanently deletes all readings for a patient. This is the
// explicit destructive path; the display-level "clear history" never reaches
// the repository.
func (r *GormRepository) PurgeReadings(ctx context.Context, patientID uint) error {
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("patient_id = ?", patientID).
		Delete(&database.Reading{}).Error; err != nil {
		return fmt.Errorf("failed to purge readings: %w", err)
	}
	return nil
}

// UpsertGoal creates the goal when it has no ID yet, otherwise updates its
// derived progress fields.
func (r *GormRepository) UpsertGoal(ctx context.Context, goal *domain.Goal) error {
	if goal.ID == 0 {
		record := database.Goal{
			PatientID:    goal.PatientID,
			GoalType:     string(goal.GoalType),
			TargetValue:  goal.TargetValue,
			CurrentValue: goal.CurrentValue,
			StartDate:    goal.StartDate,
			EndDate:      goal.EndDate,
			Achieved:     goal.Achieved,
		}
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}
		goal.ID = record.ID
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&database.Goal{}).
		Where("id = ? AND patient_id = ?", goal.ID, goal.PatientID).
		Updates(map[string]interface{}{
			"current_value": goal.CurrentValue,
			"achieved":      goal.Achieved,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("goal", fmt.Sprintf("id=%d", goal.ID))
	}
	return nil
}

// ListGoals returns all goals for a patient ordered by creation.
func (r *GormRepository) ListGoals(ctx context.Context, patientID uint) ([]domain.Goal, error) {
	var records []database.Goal
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := make([]domain.Goal, len(records))
	for i, rec := range records {
		goals[i] = domain.Goal{
			ID:           rec.ID,
			PatientID:    rec.PatientID,
			GoalType:     domain.GoalType(rec.GoalType),
			TargetValue:  rec.TargetValue,
			CurrentValue: rec.CurrentValue,
			StartDate:    rec.StartDate,
			EndDate:      rec.EndDate,
			Achieved:     rec.Achieved,
		}
	}
	return goals, nil
}

// Close closes the underlying database connection.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDomainPatient(record *database.Patient) *domain.Patient {
	return &domain.Patient{
		ID:           record.ID,
		CreatedAt:    record.CreatedAt,
		Name:         record.Name,
		Age:          record.Age,
		DiabetesType: domain.DiabetesType(record.DiabetesType),
		TargetMin:    record.TargetMin,
		TargetMax:    record.TargetMax,
	}
}
