package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/glucolab/glucometer/internal/domain"
)

// DefaultWindowDays is the trailing window used by the dashboard when the
// caller does not override it.
const DefaultWindowDays = 30

// ComputeStatistics filters readings to the trailing window
// [now - windowDays, now] (both bounds inclusive) and computes the dashboard
// metrics. An empty window yields Count 0 with every derived field left nil:
// undefined is not zero, and consumers must render the two differently.
//
// The standard deviation is the sample deviation (n-1 denominator) and is
// only defined for two or more readings. Idempotent and safe to call
// concurrently over the same history.
func ComputeStatistics(readings []domain.Reading, windowDays int, now time.Time) domain.StatsReport {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	report := domain.StatsReport{
		StatusCounts: make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, s := range domain.Statuses {
		report.StatusCounts[s] = 0
	}

	var values []float64
	for _, r := range readings {
		if r.Timestamp.Before(cutoff) || r.Timestamp.After(now) {
			continue
		}
		values = append(values, r.GlucoseValue)
		report.StatusCounts[r.Status]++
	}

	report.Count = len(values)
	if report.Count == 0 {
		return report
	}

	avg := mean(values)
	med := median(values)
	lo, hi := extrema(values)
	tir := 100 * float64(report.StatusCounts[domain.StatusNormal]) / float64(report.Count)
	a1c := (avg + 46.7) / 28.7

	report.Average = &avg
	report.Median = &med
	report.Min = &lo
	report.Max = &hi
	report.TimeInRangePct = &tir
	report.EstimatedA1C = &a1c

	if report.Count >= 2 {
		sd := sampleStdDev(values, avg)
		report.StdDev = &sd
	}

	return report
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median averages the two middle values for even counts.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func extrema(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func sampleStdDev(values []float64, avg float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
