package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
	"github.com/glucolab/glucometer/internal/repository/sqlite"
)

func newTestRepo(t *testing.T) domain.Repository {
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestPatient(t *testing.T, repo domain.Repository, name string) *domain.Patient {
	t.Helper()
	patient, err := NewPatientService(repo).RegisterPatient(context.Background(), name, 40, domain.DiabetesType2)
	require.NoError(t, err)
	return patient
}

func TestSubmitReadingPersistsVerdictStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Alice")
	svc := NewAnalysisService(repo)

	tests := []struct {
		value  float64
		status domain.Status
	}{
		{45, domain.StatusCriticalLow},
		{60, domain.StatusWarningLow},
		{85, domain.StatusNormal},
		{120, domain.StatusNormal},
		{160, domain.StatusWarningHigh},
		{200, domain.StatusCriticalHigh},
	}
	for _, tt := range tests {
		verdict, reading, err := svc.SubmitReading(ctx, patient.ID, tt.value, domain.ConditionNormal)
		require.NoError(t, err)
		assert.Equal(t, tt.status, verdict.Status)
		assert.Equal(t, tt.status, reading.Status)
		assert.NotZero(t, reading.ID)
	}

	history, err := svc.History(ctx, patient.ID, nil)
	require.NoError(t, err)
	assert.Len(t, history, len(tests))
}

func TestSubmitReadingRejectsInvalidInputWithoutPersisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Bob")
	svc := NewAnalysisService(repo)

	_, _, err := svc.SubmitReading(ctx, patient.ID, math.NaN(), domain.ConditionNormal)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReading)

	_, _, err = svc.SubmitReading(ctx, patient.ID, -5, domain.ConditionNormal)
	require.Error(t, err)

	_, _, err = svc.SubmitReading(ctx, patient.ID, 100, domain.Condition("Unknown"))
	require.Error(t, err)

	_, _, err = svc.SubmitReading(ctx, patient.ID, 1200, domain.ConditionNormal)
	require.Error(t, err, "implausible values are rejected before persistence")

	// Zero classifies as CRITICAL LOW but is outside the measurable domain.
	_, _, err = svc.SubmitReading(ctx, patient.ID, 0, domain.ConditionNormal)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImplausibleValue)

	history, err := svc.History(ctx, patient.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, history, "rejected inputs must not be persisted")
}

func TestRepositoryFailureMatchesSentinel(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Judy")
	svc := NewAnalysisService(repo)

	require.NoError(t, repo.Close())

	_, err := svc.History(ctx, patient.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRepositoryFailure)

	_, _, err = svc.SubmitReading(ctx, patient.ID, 100, domain.ConditionNormal)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRepositoryFailure)
}

func TestGetPatientByNameNotFoundMatchesSentinel(t *testing.T) {
	repo := newTestRepo(t)

	_, err := NewPatientService(repo).GetPatientByName(context.Background(), "Nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPatientNotFound)
}

func TestStatsRefreshOverSubmittedReadings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Carol")
	analysisSvc := NewAnalysisService(repo)
	statsSvc := NewStatsService(repo)

	for _, v := range []float64{45, 60, 85, 120, 160, 200} {
		_, _, err := analysisSvc.SubmitReading(ctx, patient.ID, v, domain.ConditionNormal)
		require.NoError(t, err)
	}

	report, err := statsSvc.Refresh(ctx, patient.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Count)
	assert.Equal(t, 1, report.StatusCounts[domain.StatusCriticalLow])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusWarningLow])
	assert.Equal(t, 2, report.StatusCounts[domain.StatusNormal])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusWarningHigh])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusCriticalHigh])
	require.NotNil(t, report.TimeInRangePct)
	assert.InDelta(t, 100.0*2/6, *report.TimeInRangePct, 0.01)
}

func TestStatsRefreshEmptyHistoryIsUndefined(t *testing.T) {
	repo := newTestRepo(t)
	patient := newTestPatient(t, repo, "Dave")

	report, err := NewStatsService(repo).Refresh(context.Background(), patient.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Count)
	assert.Nil(t, report.Average)
	assert.Nil(t, report.TimeInRangePct)
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Eve")
	analysisSvc := NewAnalysisService(repo)
	goalSvc := NewGoalService(repo)

	start := time.Now().AddDate(0, 0, -7)
	end := time.Now().AddDate(0, 0, 7)

	goal, err := goalSvc.AddGoal(ctx, patient.ID, domain.GoalAverageBelow, 140, start, end)
	require.NoError(t, err)
	require.NotZero(t, goal.ID)
	assert.False(t, goal.Achieved)

	for _, v := range []float64{120, 130, 140} {
		_, _, err := analysisSvc.SubmitReading(ctx, patient.ID, v, domain.ConditionDiabetic)
		require.NoError(t, err)
	}

	refreshed, err := goalSvc.RefreshGoals(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.InDelta(t, 130, refreshed[0].CurrentValue, 1e-9)
	assert.True(t, refreshed[0].Achieved)

	// The derived state is written back through the repository.
	stored, err := goalSvc.ListGoals(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.InDelta(t, 130, stored[0].CurrentValue, 1e-9)
	assert.True(t, stored[0].Achieved)
}

func TestAddGoalValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Frank")
	svc := NewGoalService(repo)

	now := time.Now()

	_, err := svc.AddGoal(ctx, patient.ID, domain.GoalType("run_marathon"), 1, now, now.AddDate(0, 0, 7))
	require.Error(t, err)

	_, err = svc.AddGoal(ctx, patient.ID, domain.GoalReadingCount, -1, now, now.AddDate(0, 0, 7))
	require.Error(t, err)

	_, err = svc.AddGoal(ctx, patient.ID, domain.GoalReadingCount, 10, now.AddDate(0, 0, 7), now)
	require.Error(t, err)
}

func TestEnsureDefaultPatient(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewPatientService(repo)

	patient, err := svc.EnsureDefaultPatient(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPatientName, patient.Name)
	assert.InDelta(t, DefaultTargetMin, patient.TargetMin, 1e-9)
	assert.InDelta(t, DefaultTargetMax, patient.TargetMax, 1e-9)

	// Second call returns the same patient, no duplicate creation.
	again, err := svc.EnsureDefaultPatient(ctx)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, again.ID)

	// Once any patient exists, the first one wins.
	_, err = svc.RegisterPatient(ctx, "Grace", 30, domain.DiabetesType1)
	require.NoError(t, err)
	first, err := svc.EnsureDefaultPatient(ctx)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, first.ID)
}

func TestUpdateTargetsValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Heidi")
	svc := NewPatientService(repo)

	require.NoError(t, svc.UpdateTargets(ctx, patient.ID, 80, 160))

	require.Error(t, svc.UpdateTargets(ctx, patient.ID, 160, 80), "min must be below max")
	require.Error(t, svc.UpdateTargets(ctx, patient.ID, 0, 140))
}

func TestTwoPatientsAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestPatient(t, repo, "Alice")
	bob := newTestPatient(t, repo, "Bob")
	analysisSvc := NewAnalysisService(repo)
	statsSvc := NewStatsService(repo)
	goalSvc := NewGoalService(repo)

	for _, v := range []float64{200, 210, 220} {
		_, _, err := analysisSvc.SubmitReading(ctx, alice.ID, v, domain.ConditionDiabetic)
		require.NoError(t, err)
	}
	_, _, err := analysisSvc.SubmitReading(ctx, bob.ID, 100, domain.ConditionNormal)
	require.NoError(t, err)

	bobReport, err := statsSvc.Refresh(ctx, bob.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, bobReport.Count)
	require.NotNil(t, bobReport.Average)
	assert.InDelta(t, 100, *bobReport.Average, 1e-9)
	assert.Equal(t, 0, bobReport.StatusCounts[domain.StatusCriticalHigh])

	start, end := time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1)
	_, err = goalSvc.AddGoal(ctx, bob.ID, domain.GoalReduceCritical, 0, start, end)
	require.NoError(t, err)

	bobGoals, err := goalSvc.RefreshGoals(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobGoals, 1)
	assert.Zero(t, bobGoals[0].CurrentValue, "Alice's critical readings must not leak into Bob's goals")
	assert.True(t, bobGoals[0].Achieved)
}

func TestPurgeHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	patient := newTestPatient(t, repo, "Ivan")
	svc := NewAnalysisService(repo)

	_, _, err := svc.SubmitReading(ctx, patient.ID, 100, domain.ConditionNormal)
	require.NoError(t, err)

	require.NoError(t, svc.PurgeHistory(ctx, patient.ID))

	history, err := svc.History(ctx, patient.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, history)
}
