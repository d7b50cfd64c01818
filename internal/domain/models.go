package domain

import (
	"time"
)

// Condition is the patient condition reported at measurement time. It never
// changes the numeric classification, only the guidance message.
type Condition string

const (
	ConditionNormal   Condition = "Normal"
	ConditionDiabetic Condition = "Diabetic"
	ConditionFasting  Condition = "Fasting"
)

// Valid reports whether the condition is one of the recognized values.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNormal, ConditionDiabetic, ConditionFasting:
		return true
	}
	return false
}

// Status is the clinical severity band of a glucose reading.
type Status string

const (
	StatusCriticalLow  Status = "CRITICAL LOW"
	StatusWarningLow   Status = "WARNING LOW"
	StatusNormal       Status = "NORMAL"
	StatusWarningHigh  Status = "WARNING HIGH"
	StatusCriticalHigh Status = "CRITICAL HIGH"
)

// Statuses lists all severity bands in ascending glucose order. Used for
// stable iteration over per-status counts.
var Statuses = []Status{
	StatusCriticalLow,
	StatusWarningLow,
	StatusNormal,
	StatusWarningHigh,
	StatusCriticalHigh,
}

// Alarm is the audio directive attached to a verdict. The audio layer owns
// playback; the engine only picks the directive.
type Alarm string

const (
	AlarmNone       Alarm = "none"
	AlarmSingleBeep Alarm = "single-beep"
	AlarmTripleBeep Alarm = "triple-beep"
)

// Verdict is the classification engine's output for a single glucose value.
type Verdict struct {
	Status       Status
	Condition    Condition
	SeverityRank int
	Message      string
	Alarm        Alarm
	Flashing     bool
}

// DiabetesType categorizes a patient's diabetes diagnosis.
type DiabetesType string

const (
	DiabetesNone        DiabetesType = "Normal"
	DiabetesType1       DiabetesType = "Type 1"
	DiabetesType2       DiabetesType = "Type 2"
	DiabetesGestational DiabetesType = "Gestational"
	DiabetesPre         DiabetesType = "Pre-diabetic"
)

// Patient is the aggregate root. Readings and goals belong to exactly one
// patient and are never shared.
type Patient struct {
	ID           uint
	CreatedAt    time.Time
	Name         string
	Age          int // 0 means not provided
	DiabetesType DiabetesType
	TargetMin    float64
	TargetMax    float64
}

// Reading is a single glucose measurement. Status holds the verdict computed
// at insertion time and is never recomputed, even if thresholds change later.
type Reading struct {
	ID           uint
	PatientID    uint
	GlucoseValue float64 // mg/dL
	Status       Status
	Condition    Condition
	Timestamp    time.Time
}

// GoalType selects the comparison rule for a health goal.
type GoalType string

const (
	GoalTimeInRange     GoalType = "time_in_range_pct"
	GoalAverageBelow    GoalType = "average_below"
	GoalReduceCritical  GoalType = "reduce_critical_events"
	GoalReadingCount    GoalType = "reading_count"
	GoalConsistencyDays GoalType = "consistency_days"
)

// Valid reports whether the goal type is recognized.
func (t GoalType) Valid() bool {
	switch t {
	case GoalTimeInRange, GoalAverageBelow, GoalReduceCritical, GoalReadingCount, GoalConsistencyDays:
		return true
	}
	return false
}

// Goal tracks progress toward a health target over a date range.
// CurrentValue and Achieved are materialized views over the reading history,
// recomputed by the evaluator and written back, never authoritative.
type Goal struct {
	ID           uint
	PatientID    uint
	GoalType     GoalType
	TargetValue  float64
	CurrentValue float64
	StartDate    time.Time
	EndDate      time.Time
	Achieved     bool
}

// StatsReport holds the dashboard metrics for one patient's reading window.
// Nil pointer fields mean the statistic is undefined for the window (for
// example an empty window has no average); zero is a valid value and is
// always distinct from undefined.
type StatsReport struct {
	Count          int
	Average        *float64
	Median         *float64
	StdDev         *float64 // sample standard deviation, defined for Count >= 2
	Min            *float64
	Max            *float64
	TimeInRangePct *float64
	EstimatedA1C   *float64
	StatusCounts   map[Status]int
}
