package pairing

import (
	"testing"
	"time"

	"crosscheck/internal/evidence"
	"crosscheck/internal/match"
)

func profile(id string, role evidence.Role) evidence.DeviceProfile {
	return evidence.DeviceProfile{ID: id, Role: role}
}

func overlaps(n int) []match.ContactOverlap {
	out := make([]match.ContactOverlap, n)
	for i := range out {
		out[i] = match.ContactOverlap{Confidence: 1.0}
	}
	return out
}

func residuals(n int) []evidence.Contact {
	out := make([]evidence.Contact, n)
	return out
}

func threads(common, onlyA, onlyB int) []match.ThreadMatch {
	var out []match.ThreadMatch
	for i := 0; i < common; i++ {
		out = append(out, match.ThreadMatch{CountA: 5, CountB: 5, Common: 3})
	}
	for i := 0; i < onlyA; i++ {
		out = append(out, match.ThreadMatch{CountA: 5})
	}
	for i := 0; i < onlyB; i++ {
		out = append(out, match.ThreadMatch{CountB: 5})
	}
	return out
}

func TestPairStrongOverlap(t *testing.T) {
	contacts := match.ContactResult{
		Overlaps: overlaps(20),
		OnlyOnA:  residuals(10),
		OnlyOnB:  residuals(5),
	}
	result := Pair(profile("a", evidence.RoleParent), profile("b", evidence.RoleChild), contacts, threads(4, 1, 1))

	if result.Relationship != "parent-child" {
		t.Errorf("relationship = %q", result.Relationship)
	}
	if result.CommonContacts != 20 || result.CommonThreads != 4 {
		t.Errorf("counts = %d/%d", result.CommonContacts, result.CommonThreads)
	}
	// 2*20/25 and 2*4/5 both clamp to 1.0.
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Confidence)
	}
	if result.PairingID == "" {
		t.Error("pairing id should be set")
	}
}

func TestPairSparseOverlapCapped(t *testing.T) {
	// Two common contacts out of tiny address books: raw ratio is high but
	// the sample is too small to assert a pairing.
	contacts := match.ContactResult{Overlaps: overlaps(2), OnlyOnA: residuals(1), OnlyOnB: residuals(1)}
	result := Pair(profile("a", evidence.RoleParent), profile("b", evidence.RoleChild), contacts, threads(1, 0, 0))

	if result.Confidence > 0.3 {
		t.Errorf("sparse overlap confidence = %v, want <= 0.3", result.Confidence)
	}
}

func TestPairNoThreadsCapped(t *testing.T) {
	contacts := match.ContactResult{Overlaps: overlaps(10), OnlyOnA: residuals(5), OnlyOnB: residuals(5)}
	result := Pair(profile("a", evidence.RoleUnknown), profile("b", evidence.RoleUnknown), contacts, nil)

	if result.Confidence > 0.3 {
		t.Errorf("no common threads: confidence = %v, want <= 0.3", result.Confidence)
	}
	if result.Relationship != "unknown-unknown" {
		t.Errorf("relationship = %q", result.Relationship)
	}
}

func TestPairConfidenceMonotonic(t *testing.T) {
	// Increasing common contacts while holding totals fixed never decreases
	// confidence.
	const totalA, totalB = 30, 30
	prev := -1.0
	for common := 0; common <= totalB; common++ {
		contacts := match.ContactResult{
			Overlaps: overlaps(common),
			OnlyOnA:  residuals(totalA - common),
			OnlyOnB:  residuals(totalB - common),
		}
		result := Pair(profile("a", evidence.RoleParent), profile("b", evidence.RoleChild), contacts, threads(2, 0, 0))
		if result.Confidence < prev {
			t.Fatalf("confidence decreased at common=%d: %v < %v", common, result.Confidence, prev)
		}
		prev = result.Confidence
	}
}

func TestPairEmptyInputs(t *testing.T) {
	result := Pair(profile("a", evidence.RoleParent), profile("b", evidence.RoleChild), match.ContactResult{}, nil)
	if result.Confidence != 0 {
		t.Errorf("empty inputs confidence = %v, want 0", result.Confidence)
	}
}

func TestOverlapPeriod(t *testing.T) {
	deviceA := evidence.DeviceProfile{
		ID:            "a",
		ObservedStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ObservedEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	deviceB := evidence.DeviceProfile{
		ID:            "b",
		ObservedStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ObservedEnd:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	result := Pair(deviceA, deviceB, match.ContactResult{}, nil)
	if !result.OverlapStart.Equal(deviceB.ObservedStart) || !result.OverlapEnd.Equal(deviceA.ObservedEnd) {
		t.Errorf("overlap = %v..%v", result.OverlapStart, result.OverlapEnd)
	}
}
