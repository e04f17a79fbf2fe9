package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crosscheck/internal/report"
)

// reportJSON is the serialized payload contract for rendering collaborators:
// indented, trailing newline, stable field order from the report structs.
func reportJSON(rpt *report.ConflictReport) ([]byte, error) {
	payload, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(payload, '\n'), nil
}

// printReportJSON writes the full report payload to the command's stdout.
func printReportJSON(cmd *cobra.Command, rpt *report.ConflictReport) error {
	payload, err := reportJSON(rpt)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(payload)
	return err
}

// writeReportFile persists the report payload at path for the --output flag.
func writeReportFile(path string, rpt *report.ConflictReport) error {
	payload, err := reportJSON(rpt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// printJSON encodes non-report payloads such as run listings.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
