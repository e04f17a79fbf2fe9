package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosscheck/internal/evidence"
	"crosscheck/internal/logging"
	"crosscheck/internal/report"
)

type stubExtractor struct {
	available bool
	texts     map[string]string
	errs      map[string]error
}

func (s *stubExtractor) Available() bool { return s.available }

func (s *stubExtractor) ExtractText(_ context.Context, path string) (string, error) {
	if err := s.errs[path]; err != nil {
		return "", err
	}
	return s.texts[path], nil
}

func defaultScreenshotPolicy() ScreenshotPolicy {
	return ScreenshotPolicy{
		CandidateThreshold:   0.7,
		AuthenticThreshold:   0.95,
		CriticalConfidence:   0.5,
		MaxWordDiscrepancies: 3,
		MaxConcurrent:        2,
	}
}

const originalBody = "meet me at the park tomorrow afternoon please"

func screenshotPool() []evidence.Message {
	return []evidence.Message{{
		ID: "m1", Sender: "5550001111", Recipient: "5550002222",
		Body: originalBody, Timestamp: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	}}
}

func TestVerifyScreenshotsUnavailableEngine(t *testing.T) {
	extractor := &stubExtractor{available: false}
	paths := []string{"a.png", "b.png"}

	result := VerifyScreenshots(context.Background(), extractor, paths, screenshotPool(), defaultScreenshotPolicy(), logging.NewNop())
	if result.Verified != 0 {
		t.Errorf("verified = %d, want 0", result.Verified)
	}
	if len(result.Discrepancies) != len(paths) {
		t.Fatalf("discrepancies = %d, want %d", len(result.Discrepancies), len(paths))
	}
	for _, d := range result.Discrepancies {
		if d.Severity != report.SeverityLow {
			t.Errorf("severity = %s, want low", d.Severity)
		}
		if d.Screenshot == nil || d.Screenshot.Authentic {
			t.Errorf("degraded screenshot must be non-authentic: %+v", d.Screenshot)
		}
	}
}

func TestVerifyScreenshotsAuthentic(t *testing.T) {
	extractor := &stubExtractor{
		available: true,
		texts:     map[string]string{"shot.png": originalBody},
	}

	result := VerifyScreenshots(context.Background(), extractor, []string{"shot.png"}, screenshotPool(), defaultScreenshotPolicy(), logging.NewNop())
	if result.Verified != 1 {
		t.Errorf("verified = %d, want 1", result.Verified)
	}
	if len(result.Discrepancies) != 0 {
		t.Errorf("discrepancies = %d, want 0", len(result.Discrepancies))
	}
}

func TestVerifyScreenshotsSeverityTiers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want report.Severity
	}{
		// Shares no vocabulary with the pool: no candidate clears 0.7.
		{"no candidate", "zzzz qqqq", report.SeverityHigh},
		// Five fabricated words on top of the original.
		{"fabricated content", originalBody + " never come back here again", report.SeverityCritical},
		// Two extra words, mid-band similarity.
		{"minor divergence", originalBody + " come now", report.SeverityMedium},
		// One extra word but similarity above the authentic threshold.
		{"near match", originalBody + " ok", report.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &stubExtractor{available: true, texts: map[string]string{"shot.png": tt.text}}
			result := VerifyScreenshots(context.Background(), extractor, []string{"shot.png"}, screenshotPool(), defaultScreenshotPolicy(), logging.NewNop())
			if result.Verified != 0 {
				t.Errorf("verified = %d, want 0", result.Verified)
			}
			if len(result.Discrepancies) != 1 {
				t.Fatalf("discrepancies = %d, want 1", len(result.Discrepancies))
			}
			d := result.Discrepancies[0]
			if d.Kind != report.KindScreenshotMismatch {
				t.Errorf("kind = %s", d.Kind)
			}
			if d.Severity != tt.want {
				t.Errorf("severity = %s, want %s", d.Severity, tt.want)
			}
		})
	}
}

func TestVerifyScreenshotsDegradesOnFailure(t *testing.T) {
	extractor := &stubExtractor{
		available: true,
		texts:     map[string]string{"empty.png": "   "},
		errs:      map[string]error{"broken.png": errors.New("binary crashed")},
	}

	result := VerifyScreenshots(context.Background(), extractor, []string{"empty.png", "broken.png"}, screenshotPool(), defaultScreenshotPolicy(), logging.NewNop())
	if len(result.Discrepancies) != 2 {
		t.Fatalf("discrepancies = %d, want 2", len(result.Discrepancies))
	}
	for _, d := range result.Discrepancies {
		if d.Severity != report.SeverityLow {
			t.Errorf("severity = %s, want low for degraded verification", d.Severity)
		}
	}
}

func TestVerifyScreenshotsMixedBatch(t *testing.T) {
	extractor := &stubExtractor{
		available: true,
		texts: map[string]string{
			"good.png": originalBody,
			"bad.png":  originalBody + " never come back here again",
		},
	}

	result := VerifyScreenshots(context.Background(), extractor, []string{"good.png", "bad.png"}, screenshotPool(), defaultScreenshotPolicy(), logging.NewNop())
	if result.Verified != 1 {
		t.Errorf("verified = %d, want 1", result.Verified)
	}
	if len(result.Discrepancies) != 1 {
		t.Fatalf("discrepancies = %d, want 1", len(result.Discrepancies))
	}
	if result.Discrepancies[0].Screenshot.Path != "bad.png" {
		t.Errorf("path = %q, want bad.png", result.Discrepancies[0].Screenshot.Path)
	}
}
