package detect

import (
	"fmt"
	"sort"
	"time"

	"crosscheck/internal/report"
)

// GapPolicy tunes per-device silence detection. Gaps overlapping the daily
// active-hours window escalate faster than purely overnight silence.
type GapPolicy struct {
	// Threshold is the minimum silence recorded at all.
	Threshold time.Duration
	// MediumAt / HighAt escalate active-hours-dominant gaps.
	MediumAt time.Duration
	HighAt   time.Duration
	// OvernightMediumAt escalates gaps that fall mostly outside active hours.
	OvernightMediumAt time.Duration
	// ActiveStartHour/ActiveEndHour bound the daily active window
	// (24h clock, start inclusive, end exclusive).
	ActiveStartHour int
	ActiveEndHour   int
}

// FindTimeGaps sorts one device's event timestamps and reports every
// consecutive silence of at least the policy threshold. deviceTag labels the
// records ("device_a"/"device_b").
func FindTimeGaps(deviceTag string, times []time.Time, policy GapPolicy) []report.Discrepancy {
	if policy.Threshold <= 0 {
		policy.Threshold = 6 * time.Hour
	}

	sorted := make([]time.Time, 0, len(times))
	for _, ts := range times {
		if !ts.IsZero() {
			sorted = append(sorted, ts)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var out []report.Discrepancy
	for i := 1; i < len(sorted); i++ {
		duration := sorted[i].Sub(sorted[i-1])
		if duration < policy.Threshold {
			continue
		}
		start, end := sorted[i-1], sorted[i]
		activeDominant := isActiveDominant(start, end, policy)
		severity := gapSeverity(duration, activeDominant, policy)

		out = append(out, report.Discrepancy{
			Kind:       report.KindTimeGap,
			Severity:   severity,
			OccurredAt: start,
			Evidence: fmt.Sprintf("%s silent for %s starting %s",
				deviceTag, duration.Round(time.Minute), start.Format(time.RFC3339)),
			Gap: &report.TimeGap{
				DeviceID:    deviceTag,
				Start:       start,
				End:         end,
				Duration:    duration,
				ActiveHours: activeDominant,
			},
		})
	}
	return out
}

func gapSeverity(duration time.Duration, activeDominant bool, policy GapPolicy) report.Severity {
	if activeDominant {
		switch {
		case duration >= policy.HighAt:
			return report.SeverityHigh
		case duration >= policy.MediumAt:
			return report.SeverityMedium
		default:
			return report.SeverityLow
		}
	}
	if policy.OvernightMediumAt > 0 && duration >= policy.OvernightMediumAt {
		return report.SeverityMedium
	}
	return report.SeverityLow
}

// isActiveDominant reports whether more than half the gap falls inside the
// daily active-hours window. A 23:00-to-09:00 gap is mostly overnight even
// though it clips one active hour.
func isActiveDominant(start, end time.Time, policy GapPolicy) bool {
	overlap := activeOverlap(start, end, policy.ActiveStartHour, policy.ActiveEndHour)
	return overlap*2 > end.Sub(start)
}

// activeOverlap sums the portion of [start, end) intersecting the daily
// [startHour, endHour) window, walking day by day.
func activeOverlap(start, end time.Time, startHour, endHour int) time.Duration {
	if !end.After(start) || endHour <= startHour {
		return 0
	}
	var total time.Duration
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for !day.After(end) {
		windowStart := day.Add(time.Duration(startHour) * time.Hour)
		windowEnd := day.Add(time.Duration(endHour) * time.Hour)
		overlapStart := maxTime(start, windowStart)
		overlapEnd := minTime(end, windowEnd)
		if overlapEnd.After(overlapStart) {
			total += overlapEnd.Sub(overlapStart)
		}
		day = day.AddDate(0, 0, 1)
	}
	return total
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
