package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/glucolab/glucometer/internal/config"
	"github.com/glucolab/glucometer/internal/database/migrations"
	"github.com/glucolab/glucometer/internal/logger"
)

type Patient struct {
	gorm.Model
	Name         string `gorm:"uniqueIndex"`
	Age          int
	DiabetesType string
	TargetMin    float64 `gorm:"default:70"`
	TargetMax    float64 `gorm:"default:140"`
}

type Reading struct {
	gorm.Model
	PatientID    uint `gorm:"index"`
	Patient      Patient
	GlucoseValue float64
	Status       string // verdict at insert time, never recomputed
	Condition    string
	Timestamp    time.Time `gorm:"index"`
}

type Goal struct {
	gorm.Model
	PatientID    uint `gorm:"index"`
	Patient      Patient
	GoalType     string
	TargetValue  float64
	CurrentValue float64
	StartDate    time.Time
	EndDate      time.Time
	Achieved     bool `gorm:"default:false"`
}

func init() {
	// Window queries scan one patient's readings by time; the composite
	// index keeps refresh cost proportional to the window, not the history.
	migrations.Register("202608_readings_patient_timestamp_idx", func(db *gorm.DB) error {
		return db.Exec("CREATE INDEX IF NOT EXISTS idx_readings_patient_timestamp ON readings (patient_id, timestamp)").Error
	}, func(db *gorm.DB) error {
		return db.Exec("DROP INDEX IF EXISTS idx_readings_patient_timestamp").Error
	})
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Patient{}, &Reading{}, &Goal{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
