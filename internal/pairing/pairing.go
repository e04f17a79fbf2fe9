// Package pairing classifies the relationship between two devices from
// contact and thread overlap.
//
// The confidence score is deliberately conservative: sparse overlap is
// capped regardless of how high the raw ratios are, because a handful of
// shared contacts between small address books is weak evidence that two
// devices belong to related parties.
package pairing

import (
	"time"

	"github.com/google/uuid"

	"crosscheck/internal/evidence"
	"crosscheck/internal/match"
)

// Minimum overlap below which a pairing claim is considered unsupported.
const (
	minCommonContacts = 3
	minCommonThreads  = 1
	sparseCap         = 0.3
)

// Result is the pairing classification for one comparison run. Created once
// per run and read-only afterward.
type Result struct {
	PairingID      string                 `json:"pairing_id"`
	DeviceA        evidence.DeviceProfile `json:"device_a"`
	DeviceB        evidence.DeviceProfile `json:"device_b"`
	Relationship   string                 `json:"relationship"`
	CommonContacts int                    `json:"common_contacts"`
	CommonThreads  int                    `json:"common_threads"`
	OverlapStart   time.Time              `json:"overlap_start,omitzero"`
	OverlapEnd     time.Time              `json:"overlap_end,omitzero"`
	Confidence     float64                `json:"confidence"`
}

// Pair combines contact- and thread-overlap signals into a relationship
// classification with a [0,1] confidence score.
func Pair(deviceA, deviceB evidence.DeviceProfile, contacts match.ContactResult, threads []match.ThreadMatch) Result {
	commonContacts := len(contacts.Overlaps)
	totalA := commonContacts + len(contacts.OnlyOnA)
	totalB := commonContacts + len(contacts.OnlyOnB)

	threadsA, threadsB, commonThreads := 0, 0, 0
	for _, thread := range threads {
		if thread.CountA > 0 {
			threadsA++
		}
		if thread.CountB > 0 {
			threadsB++
		}
		if thread.Common > 0 {
			commonThreads++
		}
	}

	contactScore, contactDefined := overlapScore(commonContacts, totalA, totalB)
	threadScore, threadDefined := overlapScore(commonThreads, threadsA, threadsB)

	var confidence float64
	switch {
	case contactDefined && threadDefined:
		confidence = (contactScore + threadScore) / 2
	case contactDefined:
		confidence = contactScore
	case threadDefined:
		confidence = threadScore
	}

	// Sparse-overlap guard: a few shared records cannot support a strong
	// pairing claim no matter how high the ratios are.
	if commonContacts < minCommonContacts || commonThreads < minCommonThreads {
		limit := 0.5 * max(contactScore, threadScore)
		confidence = min(confidence, min(sparseCap, limit))
	}

	start, end := overlapPeriod(deviceA, deviceB)

	return Result{
		PairingID:      uuid.NewString(),
		DeviceA:        deviceA,
		DeviceB:        deviceB,
		Relationship:   relationship(deviceA.Role, deviceB.Role),
		CommonContacts: commonContacts,
		CommonThreads:  commonThreads,
		OverlapStart:   start,
		OverlapEnd:     end,
		Confidence:     confidence,
	}
}

// overlapScore computes min(1, 2*common/min(totalA,totalB)). Undefined when
// either side has no records.
func overlapScore(common, totalA, totalB int) (float64, bool) {
	smaller := min(totalA, totalB)
	if smaller <= 0 {
		return 0, false
	}
	return min(1.0, 2.0*float64(common)/float64(smaller)), true
}

func relationship(roleA, roleB evidence.Role) string {
	if (roleA == evidence.RoleParent && roleB == evidence.RoleChild) ||
		(roleA == evidence.RoleChild && roleB == evidence.RoleParent) {
		return "parent-child"
	}
	return string(normalizeRole(roleA)) + "-" + string(normalizeRole(roleB))
}

func normalizeRole(role evidence.Role) evidence.Role {
	if role == "" {
		return evidence.RoleUnknown
	}
	return role
}

func overlapPeriod(a, b evidence.DeviceProfile) (time.Time, time.Time) {
	if a.ObservedStart.IsZero() || b.ObservedStart.IsZero() ||
		a.ObservedEnd.IsZero() || b.ObservedEnd.IsZero() {
		return time.Time{}, time.Time{}
	}
	start := a.ObservedStart
	if b.ObservedStart.After(start) {
		start = b.ObservedStart
	}
	end := a.ObservedEnd
	if b.ObservedEnd.Before(end) {
		end = b.ObservedEnd
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}
	}
	return start, end
}
