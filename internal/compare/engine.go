package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"crosscheck/internal/config"
	"crosscheck/internal/detect"
	"crosscheck/internal/evidence"
	"crosscheck/internal/identity"
	"crosscheck/internal/logging"
	"crosscheck/internal/match"
	"crosscheck/internal/pairing"
	"crosscheck/internal/report"
	"crosscheck/internal/services"
	"crosscheck/internal/timeline"
)

// RunOptions carries per-run inputs beyond the two snapshots.
type RunOptions struct {
	// ScreenshotPaths are images to verify against the message pool.
	ScreenshotPaths []string
	// RangeStart/RangeEnd, when set, bound the comparison period for edge
	// gap detection.
	RangeStart time.Time
	RangeEnd   time.Time
	// Now anchors recency-based severity escalation. Zero means wall clock.
	Now time.Time
}

// Engine runs comparisons. Safe for reuse across runs; each Run is
// independent.
type Engine struct {
	cfg       *config.Config
	extractor detect.TextExtractor
	logger    *slog.Logger
}

// New builds an engine. extractor may be nil when no OCR engine is
// installed; screenshot verification then degrades instead of failing.
func New(cfg *config.Config, extractor detect.TextExtractor, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		extractor: extractor,
		logger:    logging.WithComponent(logger, "compare-engine"),
	}
}

// Run executes one full comparison of two device snapshots and returns the
// conflict report. The only error conditions are invalid input and context
// cancellation; individual detector findings are data, not errors.
func (e *Engine) Run(ctx context.Context, snapshotA, snapshotB *evidence.Snapshot, opts RunOptions) (*report.ConflictReport, error) {
	if snapshotA == nil || snapshotB == nil {
		return nil, services.Wrap(services.ErrValidation, "compare", "run", "both device snapshots are required", nil)
	}

	runID := uuid.NewString()
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	logger := e.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("comparison started",
		logging.String("device_a", snapshotA.Profile.ID),
		logging.String("device_b", snapshotB.Profile.ID),
		logging.Int("screenshots", len(opts.ScreenshotPaths)))

	fp := identity.NewFingerprinter(e.cfg.Compare.FingerprintWindowSeconds)

	contacts := match.Contacts(snapshotA.Contacts, snapshotB.Contacts)
	threads := match.Threads(fp, snapshotA.Messages, snapshotB.Messages)
	paired := pairing.Pair(snapshotA.Profile, snapshotB.Profile, contacts, threads)
	logger.Info("devices paired",
		logging.String("relationship", paired.Relationship),
		logging.Float64("confidence", paired.Confidence),
		logging.Int("common_contacts", paired.CommonContacts),
		logging.Int("common_threads", paired.CommonThreads))

	merged := timeline.Synchronize(
		timeline.EventsFromSnapshot(snapshotA, timeline.SourceDeviceA),
		timeline.EventsFromSnapshot(snapshotB, timeline.SourceDeviceB),
		timeline.Options{
			MatchWindow:         time.Duration(e.cfg.Compare.TimelineMatchWindowSeconds) * time.Second,
			SimilarityThreshold: e.cfg.Compare.TimelineSimilarityThreshold,
			GapThreshold:        time.Duration(e.cfg.Compare.GapThresholdMinutes) * time.Minute,
			RangeStart:          opts.RangeStart,
			RangeEnd:            opts.RangeEnd,
		})

	detected, err := e.runDetectors(ctx, fp, snapshotA, snapshotB, opts, now, logger)
	if err != nil {
		return nil, err
	}

	discrepancies, histogram, recommendations := report.Aggregate(detected...)
	logger.Info("comparison finished",
		logging.Int("discrepancies", len(discrepancies)),
		logging.Int("critical", histogram[report.SeverityCritical]),
		logging.Float64("sync_quality", merged.SyncQuality))

	return &report.ConflictReport{
		RunID:           runID,
		GeneratedAt:     now,
		Pairing:         paired,
		Contacts:        contactSummary(contacts, e.cfg.Compare.MaxContactOverlaps),
		Threads:         threadSummary(threads, e.cfg.Compare.MaxThreadMatches),
		Timeline:        timelineSummary(merged),
		Discrepancies:   discrepancies,
		CountsByKind:    report.CountsByKind(discrepancies),
		Histogram:       histogram,
		Recommendations: recommendations,
	}, nil
}

// runDetectors fans the four detectors out on an errgroup. Each writes only
// its own slot; detectors surface findings as data, so the group fails only
// on cancellation.
func (e *Engine) runDetectors(ctx context.Context, fp identity.Fingerprinter, snapshotA, snapshotB *evidence.Snapshot, opts RunOptions, now time.Time, logger *slog.Logger) ([][]report.Discrepancy, error) {
	results := make([][]report.Discrepancy, 4)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return err
		}
		results[0] = detect.FindDeleted(fp, snapshotA, snapshotB, detect.DeletedPolicy{
			Keywords:      e.cfg.Compare.EscalationKeywords,
			RecencyWindow: time.Duration(e.cfg.Compare.DeletedRecencyDays) * 24 * time.Hour,
		}, now)
		logger.Debug("detector finished",
			logging.String(logging.FieldDetector, "deleted"),
			logging.Int("findings", len(results[0])))
		return nil
	})
	g.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return err
		}
		results[1] = detect.CompareEdits(snapshotA, snapshotB, detect.EditPolicy{
			Floor:    e.cfg.Compare.EditSimilarityFloor,
			Ceiling:  e.cfg.Compare.EditSimilarityCeiling,
			Keywords: e.cfg.Compare.EscalationKeywords,
		})
		logger.Debug("detector finished",
			logging.String(logging.FieldDetector, "edits"),
			logging.Int("findings", len(results[1])))
		return nil
	})
	g.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return err
		}
		policy := detect.GapPolicy{
			Threshold:         time.Duration(e.cfg.Compare.GapThresholdMinutes) * time.Minute,
			MediumAt:          time.Duration(e.cfg.Compare.GapMediumHours) * time.Hour,
			HighAt:            time.Duration(e.cfg.Compare.GapHighHours) * time.Hour,
			OvernightMediumAt: time.Duration(e.cfg.Compare.OvernightMediumHours) * time.Hour,
			ActiveStartHour:   e.cfg.Compare.ActiveHoursStart,
			ActiveEndHour:     e.cfg.Compare.ActiveHoursEnd,
		}
		gaps := detect.FindTimeGaps(detect.TagDeviceA, eventTimes(snapshotA), policy)
		gaps = append(gaps, detect.FindTimeGaps(detect.TagDeviceB, eventTimes(snapshotB), policy)...)
		results[2] = gaps
		logger.Debug("detector finished",
			logging.String(logging.FieldDetector, "gaps"),
			logging.Int("findings", len(results[2])))
		return nil
	})
	g.Go(func() error {
		if err := groupCtx.Err(); err != nil {
			return err
		}
		ocrCtx := groupCtx
		if deadline := e.ocrDeadline(len(opts.ScreenshotPaths)); deadline > 0 {
			var cancel context.CancelFunc
			ocrCtx, cancel = context.WithTimeout(groupCtx, deadline)
			defer cancel()
		}
		pool := append(snapshotA.TimestampedMessages(), snapshotB.TimestampedMessages()...)
		outcome := detect.VerifyScreenshots(ocrCtx, e.extractor, opts.ScreenshotPaths, pool, detect.ScreenshotPolicy{
			CandidateThreshold:   e.cfg.Compare.ScreenshotCandidateThreshold,
			AuthenticThreshold:   e.cfg.Compare.ScreenshotAuthenticThreshold,
			CriticalConfidence:   e.cfg.Compare.ScreenshotCriticalConfidence,
			MaxWordDiscrepancies: e.cfg.Compare.ScreenshotMaxWordDiscrepancies,
			MaxConcurrent:        e.cfg.OCR.MaxConcurrent,
		}, logger)
		results[3] = outcome.Discrepancies
		logger.Debug("detector finished",
			logging.String(logging.FieldDetector, "screenshots"),
			logging.Int("findings", len(results[3])),
			logging.Int("verified", outcome.Verified))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comparison canceled: %w", err)
	}
	return results, nil
}

// ocrDeadline bounds the whole screenshot batch: the per-call timeout times
// the number of serial rounds the concurrency limit allows.
func (e *Engine) ocrDeadline(screenshots int) time.Duration {
	if screenshots == 0 || e.cfg.OCR.TimeoutSeconds <= 0 {
		return 0
	}
	workers := e.cfg.OCR.MaxConcurrent
	if workers <= 0 {
		workers = 1
	}
	rounds := (screenshots + workers - 1) / workers
	return time.Duration(rounds*e.cfg.OCR.TimeoutSeconds) * time.Second
}

func eventTimes(snapshot *evidence.Snapshot) []time.Time {
	times := make([]time.Time, 0, len(snapshot.Messages)+len(snapshot.Calls))
	for _, m := range snapshot.Messages {
		times = append(times, m.Timestamp)
	}
	for _, c := range snapshot.Calls {
		times = append(times, c.Timestamp)
	}
	return times
}

func contactSummary(contacts match.ContactResult, limit int) report.ContactSummary {
	overlaps := contacts.Overlaps
	if limit > 0 && len(overlaps) > limit {
		overlaps = overlaps[:limit]
	}
	return report.ContactSummary{
		CommonCount: len(contacts.Overlaps),
		OnlyOnA:     len(contacts.OnlyOnA),
		OnlyOnB:     len(contacts.OnlyOnB),
		Overlaps:    overlaps,
	}
}

func threadSummary(threads []match.ThreadMatch, limit int) report.ThreadSummary {
	common := 0
	for _, thread := range threads {
		if thread.Common > 0 {
			common++
		}
	}
	matches := threads
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return report.ThreadSummary{
		ThreadCount: len(threads),
		CommonCount: common,
		Matches:     matches,
	}
}

func timelineSummary(merged *timeline.Timeline) report.TimelineSummary {
	return report.TimelineSummary{
		EventCount:   len(merged.Events),
		MatchedPairs: merged.MatchedPairs,
		SyncQuality:  merged.SyncQuality,
		Gaps:         merged.Gaps,
	}
}
