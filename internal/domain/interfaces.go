package domain

import (
	"context"
	"time"
)

// PatientDefaults carries the attributes applied when GetOrCreatePatient has
// to create the patient.
type PatientDefaults struct {
	Age          int
	DiabetesType DiabetesType
	TargetMin    float64
	TargetMax    float64
}

// Repository is the storage boundary for patients, readings and goals. The
// analysis core never issues raw queries; everything goes through this
// contract. Implementations must return readings in ascending timestamp
// order so statistics, goal evaluation and all export formats agree.
type Repository interface {
	GetOrCreatePatient(ctx context.Context, name string, defaults PatientDefaults) (*Patient, error)
	GetPatientByName(ctx context.Context, name string) (*Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	UpdatePatientTargets(ctx context.Context, patientID uint, targetMin, targetMax float64) error

	InsertReading(ctx context.Context, reading *Reading) error
	ListReadings(ctx context.Context, patientID uint, since *time.Time) ([]Reading, error)
	PurgeReadings(ctx context.Context, patientID uint) error

	UpsertGoal(ctx context.Context, goal *Goal) error
	ListGoals(ctx context.Context, patientID uint) ([]Goal, error)

	Close() error
}

// PatientService handles patient lifecycle operations.
type PatientService interface {
	RegisterPatient(ctx context.Context, name string, age int, diabetesType DiabetesType) (*Patient, error)
	EnsureDefaultPatient(ctx context.Context) (*Patient, error)
	GetPatientByName(ctx context.Context, name string) (*Patient, error)
	UpdateTargets(ctx context.Context, patientID uint, targetMin, targetMax float64) error
}

// AnalysisService classifies and persists new readings.
type AnalysisService interface {
	SubmitReading(ctx context.Context, patientID uint, value float64, condition Condition) (*Verdict, *Reading, error)
	History(ctx context.Context, patientID uint, since *time.Time) ([]Reading, error)
	PurgeHistory(ctx context.Context, patientID uint) error
}

// StatsService recomputes the dashboard metrics on demand.
type StatsService interface {
	Refresh(ctx context.Context, patientID uint, windowDays int) (StatsReport, error)
}

// GoalService manages goals and recomputes their derived state.
type GoalService interface {
	AddGoal(ctx context.Context, patientID uint, goalType GoalType, target float64, start, end time.Time) (*Goal, error)
	RefreshGoals(ctx context.Context, patientID uint) ([]Goal, error)
}
