package main

import (
	"fmt"
	"strings"

	"crosscheck/internal/report"
)

// maxRenderedFindings caps the findings table in terminal output; the full
// list is always available via --json or the stored run.
const maxRenderedFindings = 25

func renderReport(rpt *report.ConflictReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (generated %s)\n\n", rpt.RunID, formatTimestamp(rpt.GeneratedAt))

	fmt.Fprintf(&b, "Devices:      %s <-> %s (%s, confidence %s)\n",
		deviceLabel(rpt.Pairing.DeviceA.DisplayName, rpt.Pairing.DeviceA.ID),
		deviceLabel(rpt.Pairing.DeviceB.DisplayName, rpt.Pairing.DeviceB.ID),
		rpt.Pairing.Relationship,
		formatConfidence(rpt.Pairing.Confidence))
	fmt.Fprintf(&b, "Contacts:     %d shared, %d only on A, %d only on B\n",
		rpt.Contacts.CommonCount, rpt.Contacts.OnlyOnA, rpt.Contacts.OnlyOnB)
	fmt.Fprintf(&b, "Threads:      %d seen, %d with shared messages\n",
		rpt.Threads.ThreadCount, rpt.Threads.CommonCount)
	fmt.Fprintf(&b, "Timeline:     %d events, %d matched pairs, sync quality %s\n\n",
		rpt.Timeline.EventCount, rpt.Timeline.MatchedPairs, formatConfidence(rpt.Timeline.SyncQuality))

	fmt.Fprintf(&b, "Findings: %d total (%d critical, %d high, %d medium, %d low)\n",
		len(rpt.Discrepancies),
		rpt.Histogram[report.SeverityCritical],
		rpt.Histogram[report.SeverityHigh],
		rpt.Histogram[report.SeverityMedium],
		rpt.Histogram[report.SeverityLow])

	if len(rpt.Discrepancies) > 0 {
		shown := rpt.Discrepancies
		if len(shown) > maxRenderedFindings {
			shown = shown[:maxRenderedFindings]
		}
		b.WriteString(findingsTable(shown))
		b.WriteString("\n")
		if extra := len(rpt.Discrepancies) - maxRenderedFindings; extra > 0 {
			fmt.Fprintf(&b, "... and %d more (see --json or `crosscheck show`)\n", extra)
		}
	}

	if len(rpt.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range rpt.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func deviceLabel(displayName, id string) string {
	if strings.TrimSpace(displayName) != "" {
		return displayName
	}
	return id
}
