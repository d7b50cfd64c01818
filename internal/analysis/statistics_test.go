package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolab/glucometer/internal/domain"
)

func readingAt(value float64, status domain.Status, ts time.Time) domain.Reading {
	return domain.Reading{
		PatientID:    1,
		GlucoseValue: value,
		Status:       status,
		Condition:    domain.ConditionNormal,
		Timestamp:    ts,
	}
}

// classified builds a reading whose stored status matches the classifier,
// the invariant the repository maintains at insert time.
func classified(t *testing.T, value float64, ts time.Time) domain.Reading {
	t.Helper()
	verdict, err := Classify(value, domain.ConditionNormal)
	require.NoError(t, err)
	return readingAt(value, verdict.Status, ts)
}

func TestComputeStatisticsEmptyWindowIsUndefinedNotZero(t *testing.T) {
	now := time.Now()

	report := ComputeStatistics(nil, 30, now)

	assert.Equal(t, 0, report.Count)
	assert.Nil(t, report.Average)
	assert.Nil(t, report.Median)
	assert.Nil(t, report.StdDev)
	assert.Nil(t, report.Min)
	assert.Nil(t, report.Max)
	assert.Nil(t, report.TimeInRangePct)
	assert.Nil(t, report.EstimatedA1C)
	for _, s := range domain.Statuses {
		assert.Equal(t, 0, report.StatusCounts[s])
	}
}

func TestComputeStatisticsBasicMetrics(t *testing.T) {
	now := time.Now()
	var readings []domain.Reading
	for i, v := range []float64{70, 80, 90, 100, 110} {
		readings = append(readings, classified(t, v, now.Add(-time.Duration(i)*time.Hour)))
	}

	report := ComputeStatistics(readings, 30, now)

	assert.Equal(t, 5, report.Count)
	require.NotNil(t, report.Average)
	assert.InDelta(t, 90, *report.Average, 1e-9)
	require.NotNil(t, report.Median)
	assert.InDelta(t, 90, *report.Median, 1e-9)
	require.NotNil(t, report.Min)
	assert.InDelta(t, 70, *report.Min, 1e-9)
	require.NotNil(t, report.Max)
	assert.InDelta(t, 110, *report.Max, 1e-9)
	require.NotNil(t, report.TimeInRangePct)
	assert.InDelta(t, 100, *report.TimeInRangePct, 1e-9)
}

func TestComputeStatisticsMedianEvenCount(t *testing.T) {
	now := time.Now()
	var readings []domain.Reading
	for _, v := range []float64{80, 120, 90, 100} {
		readings = append(readings, classified(t, v, now))
	}

	report := ComputeStatistics(readings, 30, now)

	require.NotNil(t, report.Median)
	assert.InDelta(t, 95, *report.Median, 1e-9)
}

func TestComputeStatisticsEstimatedA1C(t *testing.T) {
	now := time.Now()
	readings := []domain.Reading{
		classified(t, 110, now),
		classified(t, 130, now),
	}

	report := ComputeStatistics(readings, 30, now)

	// Average 120 -> (120 + 46.7) / 28.7.
	require.NotNil(t, report.EstimatedA1C)
	assert.InDelta(t, 5.8084, *report.EstimatedA1C, 0.001)
}

func TestComputeStatisticsSampleStdDev(t *testing.T) {
	now := time.Now()

	single := ComputeStatistics([]domain.Reading{classified(t, 100, now)}, 30, now)
	assert.Nil(t, single.StdDev, "sample stdev needs at least two readings")

	pair := ComputeStatistics([]domain.Reading{
		classified(t, 90, now),
		classified(t, 110, now),
	}, 30, now)
	require.NotNil(t, pair.StdDev)
	// Sample stdev of {90, 110} with n-1 denominator.
	assert.InDelta(t, 14.1421, *pair.StdDev, 0.001)
}

func TestComputeStatisticsWindowBoundaryIsInclusive(t *testing.T) {
	now := time.Now()

	readings := []domain.Reading{
		classified(t, 100, now.AddDate(0, 0, -30)),              // exactly at the bound, included
		classified(t, 200, now.AddDate(0, 0, -30).Add(-time.Second)), // just outside
		classified(t, 100, now),
	}

	report := ComputeStatistics(readings, 30, now)

	assert.Equal(t, 2, report.Count)
	require.NotNil(t, report.Average)
	assert.InDelta(t, 100, *report.Average, 1e-9)
}

func TestComputeStatisticsScenario(t *testing.T) {
	now := time.Now()
	var readings []domain.Reading
	for i, v := range []float64{45, 60, 85, 120, 160, 200} {
		readings = append(readings, classified(t, v, now.Add(-time.Duration(6-i)*time.Minute)))
	}

	wantStatuses := []domain.Status{
		domain.StatusCriticalLow,
		domain.StatusWarningLow,
		domain.StatusNormal,
		domain.StatusNormal,
		domain.StatusWarningHigh,
		domain.StatusCriticalHigh,
	}
	for i, r := range readings {
		assert.Equal(t, wantStatuses[i], r.Status, "reading %d", i)
	}

	report := ComputeStatistics(readings, 30, now)

	assert.Equal(t, 6, report.Count)
	assert.Equal(t, 1, report.StatusCounts[domain.StatusCriticalLow])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusWarningLow])
	assert.Equal(t, 2, report.StatusCounts[domain.StatusNormal])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusWarningHigh])
	assert.Equal(t, 1, report.StatusCounts[domain.StatusCriticalHigh])

	total := 0
	for _, n := range report.StatusCounts {
		total += n
	}
	assert.Equal(t, report.Count, total)

	require.NotNil(t, report.TimeInRangePct)
	assert.InDelta(t, 100.0*2/6, *report.TimeInRangePct, 0.01)
}

func TestComputeStatisticsIsIdempotent(t *testing.T) {
	now := time.Now()
	readings := []domain.Reading{
		classified(t, 90, now),
		classified(t, 150, now.Add(-time.Hour)),
	}

	first := ComputeStatistics(readings, 30, now)
	second := ComputeStatistics(readings, 30, now)

	assert.Equal(t, first, second)
}
