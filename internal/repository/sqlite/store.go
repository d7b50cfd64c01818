// Package sqlite provides an embedded, single-file implementation of
// domain.Repository. It backs the standalone CLI and the service tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	diabetes_type TEXT NOT NULL DEFAULT 'Normal',
	target_min REAL NOT NULL DEFAULT 70,
	target_max REAL NOT NULL DEFAULT 140,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	glucose_value REAL NOT NULL,
	status TEXT NOT NULL,
	condition TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_readings_patient_timestamp ON readings (patient_id, timestamp);

CREATE TABLE IF NOT EXISTS goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id INTEGER NOT NULL REFERENCES patients(id),
	goal_type TEXT NOT NULL,
	target_value REAL NOT NULL,
	current_value REAL NOT NULL DEFAULT 0,
	start_date INTEGER NOT NULL,
	end_date INTEGER NOT NULL,
	achieved INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_goals_patient ON goals (patient_id);
`

// Store is a SQLite implementation of domain.Repository. Timestamps are
// stored as unix nanoseconds so ordering and window comparisons work in SQL.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory store, used by tests.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based store.
func NewFileStore(path string) (*Store, error) {
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A second pooled connection to an in-memory DSN would see an empty
	// database, and the CLI is single-writer anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// GetOrCreatePatient returns the patient with the given name, creating it
// with the supplied defaults if it does not exist.
func (s *Store) GetOrCreatePatient(ctx context.Context, name string, defaults domain.PatientDefaults) (*domain.Patient, error) {
	patient, err := s.GetPatientByName(ctx, name)
	if err == nil {
		return patient, nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO patients (name, age, diabetes_type, target_min, target_max, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		name, defaults.Age, string(defaults.DiabetesType), defaults.TargetMin, defaults.TargetMax, now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read patient id: %w", err)
	}

	return &domain.Patient{
		ID:           uint(id),
		CreatedAt:    now,
		Name:         name,
		Age:          defaults.Age,
		DiabetesType: defaults.DiabetesType,
		TargetMin:    defaults.TargetMin,
		TargetMax:    defaults.TargetMax,
	}, nil
}

// GetPatientByName returns the patient with the given name.
func (s *Store) GetPatientByName(ctx context.Context, name string) (*domain.Patient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, age, diabetes_type, target_min, target_max, created_at
		FROM patients WHERE name = ?`, name)

	patient, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewPatientNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// ListPatients returns all patients ordered by creation time.
func (s *Store) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, age, diabetes_type, target_min, target_max, created_at
		FROM patients ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}
	return patients, rows.Err()
}

// UpdatePatientTargets updates a patient's target range.
func (s *Store) UpdatePatientTargets(ctx context.Context, patientID uint, targetMin, targetMax float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE patients SET target_min = ?, target_max = ? WHERE id = ?`,
		targetMin, targetMax, patientID)
	if err != nil {
		return fmt.Errorf("failed to update patient targets: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("patient", fmt.Sprintf("id=%d", patientID))
	}
	return nil
}

// InsertReading persists a new reading and backfills the generated ID.
func (s *Store) InsertReading(ctx context.Context, reading *domain.Reading) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (patient_id, glucose_value, status, condition, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		reading.PatientID, reading.GlucoseValue, string(reading.Status), string(reading.Condition), reading.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read reading id: %w", err)
	}
	reading.ID = uint(id)
	return nil
}

// ListReadings returns a patient's readings in ascending timestamp order,
// optionally restricted to those at or after since.
func (s *Store) ListReadings(ctx context.Context, patientID uint, since *time.Time) ([]domain.Reading, error) {
	query := `
		SELECT id, patient_id, glucose_value, status, condition, timestamp
		FROM readings WHERE patient_id = ?`
	args := []interface{}{patientID}
	if since != nil {
		query += ` AND timestamp >= ?`
		args = append(args, since.UnixNano())
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var r domain.Reading
		var status, condition string
		var ts int64
		if err := rows.Scan(&r.ID, &r.PatientID, &r.GlucoseValue, &status, &condition, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.Status = domain.Status(status)
		r.Condition = domain.Condition(condition)
		r.Timestamp = time.Unix(0, ts)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// PurgeReadings permanently deletes all readings for a patient.
func (s *Store) PurgeReadings(ctx context.Context, patientID uint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE patient_id = ?`, patientID); err != nil {
		return fmt.Errorf("failed to purge readings: %w", err)
	}
	return nil
}

// UpsertGoal creates the goal when it has no ID yet, otherwise updates its
// derived progress fields.
func (s *Store) UpsertGoal(ctx context.Context, goal *domain.Goal) error {
	if goal.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO goals (patient_id, goal_type, target_value, current_value, start_date, end_date, achieved)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			goal.PatientID, string(goal.GoalType), goal.TargetValue, goal.CurrentValue,
			goal.StartDate.UnixNano(), goal.EndDate.UnixNano(), boolToInt(goal.Achieved))
		if err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read goal id: %w", err)
		}
		goal.ID = uint(id)
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET current_value = ?, achieved = ? WHERE id = ? AND patient_id = ?`,
		goal.CurrentValue, boolToInt(goal.Achieved), goal.ID, goal.PatientID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("goal", fmt.Sprintf("id=%d", goal.ID))
	}
	return nil
}

// ListGoals returns all goals for a patient ordered by creation.
func (s *Store) ListGoals(ctx context.Context, patientID uint) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, goal_type, target_value, current_value, start_date, end_date, achieved
		FROM goals WHERE patient_id = ? ORDER BY id ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		var g domain.Goal
		var goalType string
		var start, end int64
		var achieved int
		if err := rows.Scan(&g.ID, &g.PatientID, &goalType, &g.TargetValue, &g.CurrentValue, &start, &end, &achieved); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.GoalType = domain.GoalType(goalType)
		g.StartDate = time.Unix(0, start)
		g.EndDate = time.Unix(0, end)
		g.Achieved = achieved != 0
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var p domain.Patient
	var diabetesType string
	var created int64
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &diabetesType, &p.TargetMin, &p.TargetMax, &created); err != nil {
		return nil, err
	}
	p.DiabetesType = domain.DiabetesType(diabetesType)
	p.CreatedAt = time.Unix(0, created)
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
