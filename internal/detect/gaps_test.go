package detect

import (
	"testing"
	"time"

	"crosscheck/internal/report"
)

func defaultGapPolicy() GapPolicy {
	return GapPolicy{
		Threshold:         6 * time.Hour,
		MediumAt:          12 * time.Hour,
		HighAt:            24 * time.Hour,
		OvernightMediumAt: 48 * time.Hour,
		ActiveStartHour:   8,
		ActiveEndHour:     22,
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestFindTimeGapsBelowThreshold(t *testing.T) {
	times := []time.Time{at(1, 10, 0), at(1, 13, 0), at(1, 15, 30)}
	if out := FindTimeGaps(TagDeviceA, times, defaultGapPolicy()); len(out) != 0 {
		t.Errorf("gaps = %d, want 0", len(out))
	}
}

func TestFindTimeGapsSeverityTiers(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       report.Severity
	}{
		{"daytime at threshold", at(1, 10, 0), at(1, 16, 0), report.SeverityLow},
		{"daytime half day", at(1, 8, 0), at(1, 22, 0), report.SeverityMedium},
		{"full day", at(1, 9, 0), at(2, 9, 0), report.SeverityHigh},
		{"overnight", at(1, 23, 0), at(2, 9, 0), report.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FindTimeGaps(TagDeviceA, []time.Time{tt.start, tt.end}, defaultGapPolicy())
			if len(out) != 1 {
				t.Fatalf("gaps = %d, want 1", len(out))
			}
			if out[0].Severity != tt.want {
				t.Errorf("severity = %s, want %s", out[0].Severity, tt.want)
			}
		})
	}
}

func TestFindTimeGapsOvernightEscalation(t *testing.T) {
	policy := defaultGapPolicy()
	policy.OvernightMediumAt = 8 * time.Hour

	out := FindTimeGaps(TagDeviceB, []time.Time{at(1, 23, 0), at(2, 9, 0)}, policy)
	if len(out) != 1 {
		t.Fatalf("gaps = %d, want 1", len(out))
	}
	if out[0].Severity != report.SeverityMedium {
		t.Errorf("severity = %s, want medium", out[0].Severity)
	}
	if out[0].Gap.ActiveHours {
		t.Error("23:00-09:00 gap should not be active-hours dominant")
	}
}

func TestFindTimeGapsRecordFields(t *testing.T) {
	out := FindTimeGaps(TagDeviceB, []time.Time{at(1, 9, 0), at(1, 17, 0)}, defaultGapPolicy())
	if len(out) != 1 {
		t.Fatalf("gaps = %d, want 1", len(out))
	}
	gap := out[0].Gap
	if gap == nil {
		t.Fatal("gap detail missing")
	}
	if gap.DeviceID != TagDeviceB {
		t.Errorf("device = %q, want %q", gap.DeviceID, TagDeviceB)
	}
	if gap.Duration != 8*time.Hour {
		t.Errorf("duration = %s, want 8h", gap.Duration)
	}
	if !gap.Start.Equal(at(1, 9, 0)) || !gap.End.Equal(at(1, 17, 0)) {
		t.Errorf("bounds = %s..%s", gap.Start, gap.End)
	}
	if !gap.ActiveHours {
		t.Error("09:00-17:00 should be active-hours dominant")
	}
	if out[0].Kind != report.KindTimeGap {
		t.Errorf("kind = %s", out[0].Kind)
	}
}

func TestFindTimeGapsSortsAndSkipsZero(t *testing.T) {
	times := []time.Time{at(2, 9, 0), {}, at(1, 9, 0), at(1, 10, 0)}
	out := FindTimeGaps(TagDeviceA, times, defaultGapPolicy())
	if len(out) != 1 {
		t.Fatalf("gaps = %d, want 1", len(out))
	}
	if !out[0].Gap.Start.Equal(at(1, 10, 0)) {
		t.Errorf("gap start = %s, want day-1 10:00", out[0].Gap.Start)
	}
}
