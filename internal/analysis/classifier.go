// Package analysis implements the glucometer's analytical core: reading
// classification, windowed statistics and goal progress evaluation. All
// functions here are pure; persistence is the service layer's concern.
package analysis

import (
	"fmt"
	"math"

	"github.com/glucolab/glucometer/internal/domain"
	apperrors "github.com/glucolab/glucometer/internal/errors"
)

// Classification thresholds (mg/dL), per ADA guidelines. A boundary value
// always belongs to the lower-severity side: 54 is WARNING LOW, 140 is
// NORMAL, 180 is WARNING HIGH.
const (
	ThresholdCriticalLow = 54.0  // severe hypoglycemia below this
	ThresholdWarningLow  = 70.0  // hypoglycemia below this
	ThresholdNormalHigh  = 140.0 // upper limit for postprandial glucose
	ThresholdWarningHigh = 180.0 // severe hyperglycemia above this
)

// Severity ranks, ordinal for alarm escalation. Not a display order.
const (
	SeverityNormal   = 0
	SeverityWarning  = 2
	SeverityCritical = 4
)

// Classify maps a glucose value and patient condition to a clinical verdict.
// It is deterministic: no clock, no hidden state. Finite values outside the
// typical meter range still classify (900 is CRITICAL HIGH, not an error);
// only non-finite or negative values and unrecognized conditions are
// rejected, so callers can refuse the input before anything is persisted.
func Classify(value float64, condition domain.Condition) (domain.Verdict, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.Verdict{}, apperrors.NewInvalidReading("glucose value must be a finite number")
	}
	if value < 0 {
		return domain.Verdict{}, apperrors.NewInvalidReading(fmt.Sprintf("glucose value must not be negative, got %.1f", value))
	}
	if !condition.Valid() {
		return domain.Verdict{}, apperrors.NewInvalidReading(fmt.Sprintf("unrecognized condition %q", condition))
	}

	var status domain.Status
	switch {
	case value < ThresholdCriticalLow:
		status = domain.StatusCriticalLow
	case value < ThresholdWarningLow:
		status = domain.StatusWarningLow
	case value <= ThresholdNormalHigh:
		status = domain.StatusNormal
	case value <= ThresholdWarningHigh:
		status = domain.StatusWarningHigh
	default:
		status = domain.StatusCriticalHigh
	}

	return domain.Verdict{
		Status:       status,
		Condition:    condition,
		SeverityRank: severityRank(status),
		Message:      buildMessage(status, condition),
		Alarm:        alarmFor(status),
		Flashing:     status == domain.StatusCriticalLow || status == domain.StatusCriticalHigh,
	}, nil
}

func severityRank(status domain.Status) int {
	switch status {
	case domain.StatusCriticalLow, domain.StatusCriticalHigh:
		return SeverityCritical
	case domain.StatusWarningLow, domain.StatusWarningHigh:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

func alarmFor(status domain.Status) domain.Alarm {
	switch status {
	case domain.StatusCriticalLow, domain.StatusCriticalHigh:
		return domain.AlarmTripleBeep
	case domain.StatusWarningLow, domain.StatusWarningHigh:
		return domain.AlarmSingleBeep
	default:
		return domain.AlarmNone
	}
}

// buildMessage combines the severity band with the measurement condition.
// Wording only; the numeric decision never depends on the condition.
func buildMessage(status domain.Status, condition domain.Condition) string {
	var base string
	switch status {
	case domain.StatusCriticalLow:
		base = "CRITICAL: Severe hypoglycemia, immediate action required"
	case domain.StatusWarningLow:
		base = "WARNING: Low glucose level detected"
	case domain.StatusNormal:
		base = "Glucose level is within normal range"
	case domain.StatusWarningHigh:
		base = "WARNING: Elevated glucose level detected"
	case domain.StatusCriticalHigh:
		base = "CRITICAL: Severe hyperglycemia, immediate action required"
	}

	switch condition {
	case domain.ConditionFasting:
		return base + " for a fasting measurement."
	case domain.ConditionDiabetic:
		return base + " for a diabetic patient."
	default:
		return base + "."
	}
}
