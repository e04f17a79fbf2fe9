package detect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"crosscheck/internal/evidence"
	"crosscheck/internal/logging"
	"crosscheck/internal/report"
	"crosscheck/internal/textutil"
)

const screenshotPreviewRunes = 200

// ScreenshotPolicy tunes screenshot authenticity verification.
type ScreenshotPolicy struct {
	// CandidateThreshold is the minimum similarity for an original message
	// to count as the screenshot's source.
	CandidateThreshold float64
	// AuthenticThreshold is the similarity the best candidate must exceed
	// (with zero word discrepancies) for the screenshot to verify.
	AuthenticThreshold float64
	// CriticalConfidence and MaxWordDiscrepancies tier a mismatch up to
	// critical severity.
	CriticalConfidence   float64
	MaxWordDiscrepancies int
	// MaxConcurrent bounds parallel OCR calls.
	MaxConcurrent int
}

// TextExtractor is the OCR dependency. Implemented by services/ocr; stubbed
// in tests.
type TextExtractor interface {
	Available() bool
	ExtractText(ctx context.Context, path string) (string, error)
}

// ScreenshotResult is the outcome of verifying one batch of screenshots.
type ScreenshotResult struct {
	Discrepancies []report.Discrepancy
	Verified      int
}

// VerifyScreenshots OCRs each image and compares the extracted text against
// the full pool of original messages. OCR runs on a bounded worker group so
// a slow binary never stalls the other detectors; an unavailable OCR engine
// degrades every screenshot to an explicit non-authentic result instead of
// failing the run.
func VerifyScreenshots(ctx context.Context, extractor TextExtractor, paths []string, pool []evidence.Message, policy ScreenshotPolicy, logger *slog.Logger) ScreenshotResult {
	logger = logging.WithComponent(logger, "screenshot-verifier")
	result := ScreenshotResult{}
	if len(paths) == 0 {
		return result
	}

	if extractor == nil || !extractor.Available() {
		logger.Warn("ocr engine unavailable, degrading all screenshots",
			logging.Int("screenshots", len(paths)))
		for _, path := range paths {
			result.Discrepancies = append(result.Discrepancies, degradedScreenshot(path, "ocr engine unavailable"))
		}
		return result
	}

	limit := policy.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	outcomes := make([]*report.Discrepancy, len(paths))
	var verified int
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			discrepancy, ok := verifyOne(groupCtx, extractor, path, pool, policy, logger)
			if ok {
				mu.Lock()
				verified++
				mu.Unlock()
				return nil
			}
			outcomes[i] = &discrepancy
			return nil
		})
	}
	// Workers only record outcomes; no worker returns an error.
	_ = g.Wait()

	for _, outcome := range outcomes {
		if outcome != nil {
			result.Discrepancies = append(result.Discrepancies, *outcome)
		}
	}
	result.Verified = verified
	return result
}

// verifyOne returns (discrepancy, false) for anything short of a verified
// authentic screenshot, and (zero, true) when the screenshot checks out.
func verifyOne(ctx context.Context, extractor TextExtractor, path string, pool []evidence.Message, policy ScreenshotPolicy, logger *slog.Logger) (report.Discrepancy, bool) {
	text, err := extractor.ExtractText(ctx, path)
	if err != nil {
		logger.Warn("text extraction failed",
			logging.String("path", path), logging.Error(err))
		return degradedScreenshot(path, fmt.Sprintf("text extraction failed: %v", err)), false
	}
	if textutil.Normalize(text) == "" {
		return degradedScreenshot(path, "no text extracted from image"), false
	}

	best, similarity := bestCandidate(text, pool)
	if best == nil || similarity < policy.CandidateThreshold {
		return report.Discrepancy{
			Kind:     report.KindScreenshotMismatch,
			Severity: report.SeverityHigh,
			Evidence: fmt.Sprintf("screenshot %s matches no original message (best similarity %.2f)", path, similarity),
			Screenshot: &report.ScreenshotMismatch{
				Path:          path,
				ExtractedText: textutil.Preview(text, screenshotPreviewRunes),
				Similarity:    similarity,
				Authentic:     false,
				Reason:        "no original message above the candidate threshold",
			},
		}, false
	}

	wordDiff := textutil.WordSetDiff(text, best.Body)
	if similarity > policy.AuthenticThreshold && wordDiff == 0 {
		logger.Debug("screenshot verified",
			logging.String("path", path), logging.Float64("similarity", similarity))
		return report.Discrepancy{}, true
	}

	severity := report.SeverityMedium
	switch {
	case similarity < policy.CriticalConfidence || wordDiff > policy.MaxWordDiscrepancies:
		severity = report.SeverityCritical
	case similarity > policy.AuthenticThreshold:
		severity = report.SeverityLow
	}

	return report.Discrepancy{
		Kind:       report.KindScreenshotMismatch,
		Severity:   severity,
		OccurredAt: best.Timestamp,
		Evidence: fmt.Sprintf("screenshot %s differs from closest original (similarity %.2f, %d word discrepancies)",
			path, similarity, wordDiff),
		Screenshot: &report.ScreenshotMismatch{
			Path:              path,
			ExtractedText:     textutil.Preview(text, screenshotPreviewRunes),
			BestMatchPreview:  textutil.Preview(best.Body, screenshotPreviewRunes),
			Similarity:        similarity,
			WordDiscrepancies: wordDiff,
			Authentic:         false,
			Reason:            "extracted text does not exactly reproduce the original message",
		},
	}, false
}

func bestCandidate(text string, pool []evidence.Message) (*evidence.Message, float64) {
	var best *evidence.Message
	bestScore := -1.0
	for i := range pool {
		score := textutil.Ratio(text, pool[i].Body)
		if score > bestScore {
			best = &pool[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestScore
}

func degradedScreenshot(path, reason string) report.Discrepancy {
	return report.Discrepancy{
		Kind:     report.KindScreenshotMismatch,
		Severity: report.SeverityLow,
		Evidence: fmt.Sprintf("screenshot %s could not be verified: %s", path, reason),
		Screenshot: &report.ScreenshotMismatch{
			Path:      path,
			Authentic: false,
			Reason:    reason,
		},
	}
}
