package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"crosscheck/internal/report"
	"crosscheck/internal/runstore"
)

// severityColors styles table rows by how much a finding matters; low
// severity stays unstyled.
func severityColors(severity report.Severity) text.Colors {
	switch severity {
	case report.SeverityCritical:
		return text.Colors{text.FgHiRed, text.Bold}
	case report.SeverityHigh:
		return text.Colors{text.FgRed}
	case report.SeverityMedium:
		return text.Colors{text.FgYellow}
	default:
		return nil
	}
}

// findingsTable renders the discrepancy list with severity-styled rows.
// Callers cap the list; the table renders whatever it is given.
func findingsTable(findings []report.Discrepancy) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"SEVERITY", "KIND", "WHEN", "EVIDENCE"})
	for _, d := range findings {
		tw.AppendRow(table.Row{
			strings.ToUpper(string(d.Severity)),
			string(d.Kind),
			formatTimestamp(d.OccurredAt),
			d.Evidence,
		})
	}
	tw.SetRowPainter(func(row table.Row) text.Colors {
		label, _ := row[0].(string)
		return severityColors(report.Severity(strings.ToLower(label)))
	})
	return tw.Render()
}

// runsTable renders stored run summaries, numeric columns right-aligned and
// runs with critical findings highlighted.
func runsTable(runs []runstore.RunSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"RUN", "CREATED", "DEVICES", "RELATIONSHIP", "CONFIDENCE", "FINDINGS", "CRITICAL"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.RunID,
			formatTimestamp(run.CreatedAt),
			run.DeviceA + " <-> " + run.DeviceB,
			run.Relationship,
			formatConfidence(run.Confidence),
			strconv.Itoa(run.Discrepancies),
			strconv.Itoa(run.Critical),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.SetRowPainter(func(row table.Row) text.Colors {
		if critical, ok := row[6].(string); ok && critical != "0" {
			return text.Colors{text.FgRed}
		}
		return nil
	})
	return tw.Render()
}
