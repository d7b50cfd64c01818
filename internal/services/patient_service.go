package services

import (
	"context"
	"strings"

	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
	"github.com/glucolab/glucometer/internal/logger"
)

// Default target range applied to new patients, mg/dL.
const (
	DefaultTargetMin = 70.0
	DefaultTargetMax = 140.0
)

// DefaultPatientName is the patient auto-created on first startup when the
// store is empty.
const DefaultPatientName = "Default Patient"

type PatientService struct {
	repo domain.Repository
}

func NewPatientService(repo domain.Repository) *PatientService {
	return &PatientService{repo: repo}
}

// RegisterPatient creates a patient (or returns the existing one with the
// same name) after validating its attributes.
func (s *PatientService) RegisterPatient(ctx context.Context, name string, age int, diabetesType domain.DiabetesType) (*domain.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("patient name must not be empty")
	}
	if age < 0 {
		return nil, apperrors.NewValidationError("patient age must be positive")
	}
	if diabetesType == "" {
		diabetesType = domain.DiabetesNone
	}

	patient, err := s.repo.GetOrCreatePatient(ctx, name, domain.PatientDefaults{
		Age:          age,
		DiabetesType: diabetesType,
		TargetMin:    DefaultTargetMin,
		TargetMax:    DefaultTargetMax,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return patient, nil
}

// EnsureDefaultPatient creates the default patient if the store has no
// patients yet and returns the first patient either way.
func (s *PatientService) EnsureDefaultPatient(ctx context.Context) (*domain.Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(patients) > 0 {
		return &patients[0], nil
	}

	logger.Info("No patients found, creating default patient", "name", DefaultPatientName)
	patient, err := s.repo.GetOrCreatePatient(ctx, DefaultPatientName, domain.PatientDefaults{
		DiabetesType: domain.DiabetesNone,
		TargetMin:    DefaultTargetMin,
		TargetMax:    DefaultTargetMax,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return patient, nil
}

// GetPatientByName looks a patient up by exact name.
func (s *PatientService) GetPatientByName(ctx context.Context, name string) (*domain.Patient, error) {
	return s.repo.GetPatientByName(ctx, strings.TrimSpace(name))
}

// ListPatients returns all patients.
func (s *PatientService) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return patients, nil
}

// UpdateTargets changes a patient's target range after validating it.
func (s *PatientService) UpdateTargets(ctx context.Context, patientID uint, targetMin, targetMax float64) error {
	if targetMin <= 0 || targetMax <= 0 || targetMin >= targetMax {
		return apperrors.ErrInvalidTargetRange.WithContext("target_min", targetMin).WithContext("target_max", targetMax)
	}
	return s.repo.UpdatePatientTargets(ctx, patientID, targetMin, targetMax)
}
