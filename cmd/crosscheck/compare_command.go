package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crosscheck/internal/compare"
	"crosscheck/internal/evidence"
	"crosscheck/internal/runstore"
	"crosscheck/internal/services/ocr"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var screenshots []string
	var fromFlag string
	var toFlag string
	var outputPath string
	var asJSON bool
	var noStore bool

	cmd := &cobra.Command{
		Use:   "compare <device-a.json> <device-b.json>",
		Short: "Compare two device evidence snapshots",
		Long: "Compare pairs the devices, synchronizes their timelines, runs the\n" +
			"discrepancy detectors, and prints a conflict report. The report is\n" +
			"stored for later inspection with `crosscheck show` unless --no-store\n" +
			"is given.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			snapshotA, err := evidence.Load(args[0])
			if err != nil {
				return fmt.Errorf("load device A snapshot: %w", err)
			}
			snapshotB, err := evidence.Load(args[1])
			if err != nil {
				return fmt.Errorf("load device B snapshot: %w", err)
			}

			opts := compare.RunOptions{ScreenshotPaths: screenshots}
			if opts.RangeStart, err = parseTimeFlag(fromFlag); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if opts.RangeEnd, err = parseTimeFlag(toFlag); err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			extractor := ocr.New(cfg.OCR.Binary, cfg.OCR.Languages, cfg.OCR.TimeoutSeconds)
			engine := compare.New(cfg, extractor, logger)
			rpt, err := engine.Run(cmd.Context(), snapshotA, snapshotB, opts)
			if err != nil {
				return err
			}

			if !noStore {
				if err := ctx.withStore(func(store *runstore.Store) error {
					return store.SaveRun(cmd.Context(), rpt)
				}); err != nil {
					return fmt.Errorf("store run: %w", err)
				}
			}

			if outputPath != "" {
				if err := writeReportFile(outputPath, rpt); err != nil {
					return err
				}
			}

			if asJSON || !isTerminal(cmd) {
				return printReportJSON(cmd, rpt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(rpt))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&screenshots, "screenshots", nil, "Screenshot images to verify against the message pool")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start of the comparison period (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End of the comparison period (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Also write the full report JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip persisting the run")
	return cmd
}
