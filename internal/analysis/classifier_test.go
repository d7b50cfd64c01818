package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
)

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		value    float64
		status   domain.Status
		rank     int
		alarm    domain.Alarm
		flashing bool
	}{
		{0, domain.StatusCriticalLow, SeverityCritical, domain.AlarmTripleBeep, true},
		{40, domain.StatusCriticalLow, SeverityCritical, domain.AlarmTripleBeep, true},
		{53.9, domain.StatusCriticalLow, SeverityCritical, domain.AlarmTripleBeep, true},
		{54, domain.StatusWarningLow, SeverityWarning, domain.AlarmSingleBeep, false},
		{69.9, domain.StatusWarningLow, SeverityWarning, domain.AlarmSingleBeep, false},
		{70, domain.StatusNormal, SeverityNormal, domain.AlarmNone, false},
		{100, domain.StatusNormal, SeverityNormal, domain.AlarmNone, false},
		{140, domain.StatusNormal, SeverityNormal, domain.AlarmNone, false},
		{140.1, domain.StatusWarningHigh, SeverityWarning, domain.AlarmSingleBeep, false},
		{180, domain.StatusWarningHigh, SeverityWarning, domain.AlarmSingleBeep, false},
		{180.1, domain.StatusCriticalHigh, SeverityCritical, domain.AlarmTripleBeep, true},
		{200, domain.StatusCriticalHigh, SeverityCritical, domain.AlarmTripleBeep, true},
		{900, domain.StatusCriticalHigh, SeverityCritical, domain.AlarmTripleBeep, true},
	}

	for _, tt := range tests {
		verdict, err := Classify(tt.value, domain.ConditionNormal)
		require.NoError(t, err, "Classify(%v)", tt.value)
		assert.Equal(t, tt.status, verdict.Status, "Classify(%v) status", tt.value)
		assert.Equal(t, tt.rank, verdict.SeverityRank, "Classify(%v) rank", tt.value)
		assert.Equal(t, tt.alarm, verdict.Alarm, "Classify(%v) alarm", tt.value)
		assert.Equal(t, tt.flashing, verdict.Flashing, "Classify(%v) flashing", tt.value)
	}
}

func TestClassifyOutOfRangeButFiniteIsNotAnError(t *testing.T) {
	// Plausibility is a caller concern; the classifier accepts any finite
	// non-negative value.
	verdict, err := Classify(1500, domain.ConditionNormal)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCriticalHigh, verdict.Status)
}

func TestClassifyRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		condition domain.Condition
	}{
		{"NaN", math.NaN(), domain.ConditionNormal},
		{"positive infinity", math.Inf(1), domain.ConditionNormal},
		{"negative infinity", math.Inf(-1), domain.ConditionNormal},
		{"negative value", -10, domain.ConditionNormal},
		{"unknown condition", 100, domain.Condition("Postprandial")},
		{"empty condition", 100, domain.Condition("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.value, tt.condition)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidReading)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first, err := Classify(85, domain.ConditionFasting)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Classify(85, domain.ConditionFasting)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassifyMessageDependsOnCondition(t *testing.T) {
	fasting, err := Classify(85, domain.ConditionFasting)
	require.NoError(t, err)
	diabetic, err := Classify(85, domain.ConditionDiabetic)
	require.NoError(t, err)
	normal, err := Classify(85, domain.ConditionNormal)
	require.NoError(t, err)

	// Same band, distinct guidance text per condition.
	assert.Equal(t, fasting.Status, diabetic.Status)
	assert.NotEqual(t, fasting.Message, diabetic.Message)
	assert.NotEqual(t, fasting.Message, normal.Message)
	assert.Equal(t, domain.ConditionFasting, fasting.Condition)
}
