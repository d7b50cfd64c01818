// Package commands wires the CLI front end to the analysis services. Every
// command runs synchronously: open the store, run one operation, print, exit.
package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/config"
	"github.com/glucolab/glucometer/internal/database"
	"github.com/glucolab/glucometer/internal/domain"
	"github.com/glucolab/glucometer/internal/logger"
	"github.com/glucolab/glucometer/internal/repository"
	"github.com/glucolab/glucometer/internal/repository/sqlite"
	"github.com/glucolab/glucometer/internal/services"
	"github.com/glucolab/glucometer/internal/session"
)

// app bundles the configured services behind one command invocation.
type app struct {
	cfg      *config.Config
	repo     domain.Repository
	session  session.Manager
	patients *services.PatientService
	analysis *services.AnalysisService
	stats    *services.StatsService
	goals    *services.GoalService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var repo domain.Repository
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		repo = repository.NewGormRepository(db)
	default:
		store, err := sqlite.NewFileStore(cfg.DB.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		repo = store
	}

	var sess session.Manager
	if cfg.Redis.Enabled {
		redisSess, err := session.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Warn("Redis unavailable, session state will not persist across runs", "error", err)
			sess = session.NewMemoryManager()
		} else {
			sess = redisSess
		}
	} else {
		sess = session.NewMemoryManager()
	}

	a := &app{
		cfg:      cfg,
		repo:     repo,
		session:  sess,
		patients: services.NewPatientService(repo),
		analysis: services.NewAnalysisService(repo),
		stats:    services.NewStatsService(repo),
		goals:    services.NewGoalService(repo),
	}

	// First startup with an empty store gets a usable default patient.
	if _, err := a.patients.EnsureDefaultPatient(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.session.Close(); err != nil {
		logger.Warn("Failed to close session manager", "error", err)
	}
	if err := a.repo.Close(); err != nil {
		logger.Warn("Failed to close repository", "error", err)
	}
}

// resolvePatient picks the patient a command operates on: the --patient flag
// wins, then the session's active patient, then the default patient.
func (a *app) resolvePatient(ctx context.Context, cmd *cli.Command) (*domain.Patient, error) {
	if name := cmd.String("patient"); name != "" {
		return a.patients.GetPatientByName(ctx, name)
	}

	if id, ok := a.session.ActivePatient(); ok {
		patients, err := a.patients.ListPatients(ctx)
		if err != nil {
			return nil, err
		}
		for i := range patients {
			if patients[i].ID == id {
				return &patients[i], nil
			}
		}
	}

	return a.patients.EnsureDefaultPatient(ctx)
}

// windowDays resolves the statistics window: flag, then session override,
// then configured default.
func (a *app) windowDays(cmd *cli.Command) int {
	if cmd.IsSet("window-days") {
		return int(cmd.Int("window-days"))
	}
	if days, ok := a.session.WindowDays(); ok {
		return days
	}
	return a.cfg.Analysis.WindowDays
}

func patientFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "patient",
		Usage:   "Patient name (defaults to the session's active patient)",
		Sources: cli.EnvVars("GLUCOMETER_PATIENT"),
	}
}
