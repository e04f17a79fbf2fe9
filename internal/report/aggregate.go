package report

import (
	"fmt"
	"sort"
	"time"
)

// Recommendation rule thresholds. Rule-based and deterministic; the numbers
// are review triage policy, not statistical claims.
const (
	highCountForBackups   = 5
	deletedCountForImpact = 10
	largeGapDuration      = 24 * time.Hour
)

// Aggregate merges detector outputs into one severity-ranked list with a
// histogram and rule-based recommendations. Input order does not affect the
// result.
func Aggregate(groups ...[]Discrepancy) ([]Discrepancy, map[Severity]int, []string) {
	var all []Discrepancy
	for _, group := range groups {
		all = append(all, group...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity.Rank() != all[j].Severity.Rank() {
			return all[i].Severity.Rank() > all[j].Severity.Rank()
		}
		if !all[i].OccurredAt.Equal(all[j].OccurredAt) {
			return all[i].OccurredAt.Before(all[j].OccurredAt)
		}
		return all[i].Kind < all[j].Kind
	})

	histogram := map[Severity]int{
		SeverityLow:      0,
		SeverityMedium:   0,
		SeverityHigh:     0,
		SeverityCritical: 0,
	}
	deleted := 0
	largeGaps := 0
	for _, d := range all {
		histogram[d.Severity]++
		if d.Kind == KindDeletedMessage {
			deleted++
		}
		if d.Gap != nil && d.Gap.Duration >= largeGapDuration {
			largeGaps++
		}
	}

	return all, histogram, recommendations(histogram, deleted, largeGaps)
}

func recommendations(histogram map[Severity]int, deleted, largeGaps int) []string {
	var recs []string
	if histogram[SeverityCritical] > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d critical finding(s): obtain an independent forensic review before relying on this evidence",
			histogram[SeverityCritical]))
	}
	if histogram[SeverityHigh] > highCountForBackups {
		recs = append(recs, fmt.Sprintf(
			"%d high-severity findings: request additional device backups to corroborate",
			histogram[SeverityHigh]))
	}
	if deleted > deletedCountForImpact {
		recs = append(recs, fmt.Sprintf(
			"%d one-sided messages: request an explanation for the missing records from the producing party",
			deleted))
	}
	if largeGaps > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d gap(s) of 24h or more: investigate device resets, app reinstalls, or intentional deletion windows",
			largeGaps))
	}
	return recs
}
