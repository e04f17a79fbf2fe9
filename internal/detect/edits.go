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

const editPreviewRunes = 200

// Relative length change beyond which an edit is classified as an addition
// or deletion rather than a text change.
const editLengthBand = 0.1

// EditPolicy tunes the similarity band within which two same-thread messages
// are reported as an edit. The band is exclusive on both ends: at or below
// Floor the messages are unrelated, at or above Ceiling they are the same
// message with formatting noise.
type EditPolicy struct {
	Floor    float64
	Ceiling  float64
	Keywords []string
}

type editKey struct {
	threadKey string
	minute    int64
}

// CompareEdits indexes device-B messages by (thread key, minute timestamp)
// and reports each device-A message whose same-key counterpart differs in
// content with similarity strictly inside the policy band. Each B candidate
// is consumed at most once; candidates resolve in input order.
func CompareEdits(snapshotA, snapshotB *evidence.Snapshot, policy EditPolicy) []report.Discrepancy {
	indexB := make(map[editKey][]*evidence.Message)
	messagesB := snapshotB.Messages
	for i := range messagesB {
		m := &messagesB[i]
		if m.Timestamp.IsZero() {
			continue
		}
		key := editKeyFor(m)
		indexB[key] = append(indexB[key], m)
	}
	consumed := make(map[*evidence.Message]bool)

	var out []report.Discrepancy
	for _, messageA := range snapshotA.Messages {
		if messageA.Timestamp.IsZero() {
			continue
		}
		key := editKeyFor(&messageA)
		for _, candidate := range indexB[key] {
			if consumed[candidate] || candidate.Body == messageA.Body {
				continue
			}
			similarity := textutil.Ratio(messageA.Body, candidate.Body)
			if similarity <= policy.Floor || similarity >= policy.Ceiling {
				continue
			}
			consumed[candidate] = true
			out = append(out, editDiscrepancy(messageA, *candidate, key.threadKey, similarity, policy))
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}

func editKeyFor(m *evidence.Message) editKey {
	threadKey := identity.ThreadKey(identity.NormalizePhone(m.Sender), identity.NormalizePhone(m.Recipient))
	return editKey{threadKey: threadKey, minute: m.Timestamp.UTC().Truncate(time.Minute).Unix()}
}

func editDiscrepancy(messageA, messageB evidence.Message, threadKey string, similarity float64, policy EditPolicy) report.Discrepancy {
	editType := classifyEdit(messageA.Body, messageB.Body)
	summary := textutil.ChangeSummary(messageA.Body, messageB.Body)

	severity := report.SeverityMedium
	if summaryHitsKeyword(summary, policy.Keywords) {
		severity = report.SeverityHigh
	}

	return report.Discrepancy{
		Kind:       report.KindEditedMessage,
		Severity:   severity,
		OccurredAt: messageA.Timestamp,
		Evidence: fmt.Sprintf("same-thread message at %s differs between devices (%s, similarity %.2f)",
			messageA.Timestamp.Format(time.RFC3339), editType, similarity),
		Edited: &report.EditedMessage{
			ThreadKey:     threadKey,
			Timestamp:     messageA.Timestamp,
			BodyA:         textutil.Preview(messageA.Body, editPreviewRunes),
			BodyB:         textutil.Preview(messageB.Body, editPreviewRunes),
			EditType:      editType,
			Similarity:    similarity,
			ChangeSummary: summary,
		},
	}
}

// classifyEdit types the change by relative normalized length: device-B
// content meaningfully longer is an addition, meaningfully shorter a
// deletion, otherwise a text change.
func classifyEdit(bodyA, bodyB string) string {
	lenA := len([]rune(textutil.Normalize(bodyA)))
	lenB := len([]rune(textutil.Normalize(bodyB)))
	if lenA == 0 {
		return "addition"
	}
	ratio := float64(lenB) / float64(lenA)
	switch {
	case ratio > 1+editLengthBand:
		return "addition"
	case ratio < 1-editLengthBand:
		return "deletion"
	default:
		return "text_change"
	}
}

// summaryHitsKeyword escalates edits whose changed words include an
// escalation term; an edit that inserts or removes a threat matters more
// than one fixing a typo.
func summaryHitsKeyword(summary string, keywords []string) bool {
	if summary == "" {
		return false
	}
	words := make(map[string]struct{})
	for _, part := range strings.Fields(summary) {
		words[strings.TrimLeft(part, "+-")] = struct{}{}
	}
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(strings.ToLower(keyword))
		if keyword == "" {
			continue
		}
		if _, ok := words[keyword]; ok {
			return true
		}
	}
	return false
}
