package detect

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"crosscheck/internal/evidence"
	"crosscheck/internal/identity"
	"crosscheck/internal/report"
	"crosscheck/internal/textutil"
)

// Device tags used in discrepancy records, matching the timeline source tags.
const (
	TagDeviceA = "device_a"
	TagDeviceB = "device_b"
)

const deletedPreviewRunes = 120

// DeletedPolicy tunes severity escalation for one-sided messages.
type DeletedPolicy struct {
	// Keywords escalate a one-sided message to high severity. Matched
	// case-insensitively against the normalized body.
	Keywords []string
	// RecencyWindow escalates messages newer than this to medium.
	RecencyWindow time.Duration
}

// FindDeleted runs the symmetric fingerprint set-difference between the two
// devices' messages. Every fingerprint present on exactly one side becomes a
// DeletedMessage record; identical message sets yield an empty result. now
// anchors the recency escalation.
func FindDeleted(fp identity.Fingerprinter, snapshotA, snapshotB *evidence.Snapshot, policy DeletedPolicy, now time.Time) []report.Discrepancy {
	indexA := fingerprintIndex(fp, snapshotA.Messages)
	indexB := fingerprintIndex(fp, snapshotB.Messages)

	var out []report.Discrepancy
	out = append(out, oneSided(indexA, indexB, TagDeviceA, TagDeviceB, policy, now)...)
	out = append(out, oneSided(indexB, indexA, TagDeviceB, TagDeviceA, policy, now)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}

// fingerprintIndex maps fingerprint to the first message producing it.
// Duplicate fingerprints denote redundant captures; first in input order
// wins.
func fingerprintIndex(fp identity.Fingerprinter, messages []evidence.Message) map[string]evidence.Message {
	index := make(map[string]evidence.Message, len(messages))
	for _, m := range messages {
		fingerprint, ok := fp.Message(m.Sender, m.Recipient, m.Timestamp, m.Body)
		if !ok {
			continue
		}
		if _, seen := index[fingerprint]; !seen {
			index[fingerprint] = m
		}
	}
	return index
}

func oneSided(have, missing map[string]evidence.Message, haveTag, missingTag string, policy DeletedPolicy, now time.Time) []report.Discrepancy {
	var out []report.Discrepancy
	for fingerprint, m := range have {
		if _, ok := missing[fingerprint]; ok {
			continue
		}
		severity := deletedSeverity(m, policy, now)
		threadKey := identity.ThreadKey(identity.NormalizePhone(m.Sender), identity.NormalizePhone(m.Recipient))
		out = append(out, report.Discrepancy{
			Kind:       report.KindDeletedMessage,
			Severity:   severity,
			OccurredAt: m.Timestamp,
			Evidence: fmt.Sprintf("message at %s exists on %s but not on %s",
				m.Timestamp.Format(time.RFC3339), haveTag, missingTag),
			Deleted: &report.DeletedMessage{
				Fingerprint:       fingerprint,
				ThreadKey:         threadKey,
				Timestamp:         m.Timestamp,
				Preview:           textutil.Preview(m.Body, deletedPreviewRunes),
				ExistsOnDevice:    haveTag,
				MissingFromDevice: missingTag,
				Explanations:      deletedExplanations(missingTag),
			},
		})
	}
	return out
}

func deletedSeverity(m evidence.Message, policy DeletedPolicy, now time.Time) report.Severity {
	body := textutil.Normalize(m.Body)
	for _, keyword := range policy.Keywords {
		keyword = strings.TrimSpace(strings.ToLower(keyword))
		if keyword != "" && strings.Contains(body, keyword) {
			return report.SeverityHigh
		}
	}
	if policy.RecencyWindow > 0 && now.Sub(m.Timestamp) < policy.RecencyWindow {
		return report.SeverityMedium
	}
	return report.SeverityLow
}

// deletedExplanations lists plausible, non-committal causes. The finder
// never asserts which one applies.
func deletedExplanations(missingTag string) []string {
	return []string{
		fmt.Sprintf("message deleted on %s through the app", missingTag),
		fmt.Sprintf("sync or backup delay on %s", missingTag),
		fmt.Sprintf("app reinstalled on %s, clearing local history", missingTag),
		fmt.Sprintf("extraction of %s predates the message", missingTag),
	}
}
