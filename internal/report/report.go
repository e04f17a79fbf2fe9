package report

import (
	"time"

	"crosscheck/internal/match"
	"crosscheck/internal/pairing"
	"crosscheck/internal/timeline"
)

// Severity ranks how much a discrepancy matters for review.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the sort weight of a severity, higher meaning more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Kind names a discrepancy variant.
type Kind string

const (
	KindDeletedMessage     Kind = "deleted_message"
	KindEditedMessage      Kind = "edited_message"
	KindTimeGap            Kind = "time_gap"
	KindScreenshotMismatch Kind = "screenshot_mismatch"
)

// DeletedMessage records a message present on one device only.
type DeletedMessage struct {
	Fingerprint       string    `json:"fingerprint"`
	ThreadKey         string    `json:"thread_key"`
	Timestamp         time.Time `json:"timestamp"`
	Preview           string    `json:"preview"`
	ExistsOnDevice    string    `json:"exists_on_device"`
	MissingFromDevice string    `json:"missing_from_device"`
	Explanations      []string  `json:"possible_explanations"`
}

// EditedMessage records content that differs between devices for what
// appears to be the same message.
type EditedMessage struct {
	ThreadKey     string    `json:"thread_key"`
	Timestamp     time.Time `json:"timestamp"`
	BodyA         string    `json:"body_a"`
	BodyB         string    `json:"body_b"`
	EditType      string    `json:"edit_type"`
	Similarity    float64   `json:"similarity"`
	ChangeSummary string    `json:"change_summary,omitempty"`
}

// TimeGap records an unexplained silence on one device.
type TimeGap struct {
	DeviceID    string        `json:"device_id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Duration    time.Duration `json:"duration"`
	ActiveHours bool          `json:"during_active_hours"`
}

// ScreenshotMismatch records a screenshot whose text does not faithfully
// reproduce any original message.
type ScreenshotMismatch struct {
	Path              string  `json:"path"`
	ExtractedText     string  `json:"extracted_text,omitempty"`
	BestMatchPreview  string  `json:"best_match_preview,omitempty"`
	Similarity        float64 `json:"similarity"`
	WordDiscrepancies int     `json:"word_discrepancies"`
	Authentic         bool    `json:"authentic"`
	Reason            string  `json:"reason"`
}

// Discrepancy is the tagged union over the four detector variants. Kind
// names the variant; exactly one detail pointer is non-nil.
type Discrepancy struct {
	Kind       Kind      `json:"kind"`
	Severity   Severity  `json:"severity"`
	OccurredAt time.Time `json:"occurred_at,omitzero"`
	Evidence   string    `json:"evidence"`

	Deleted    *DeletedMessage     `json:"deleted_message,omitempty"`
	Edited     *EditedMessage      `json:"edited_message,omitempty"`
	Gap        *TimeGap            `json:"time_gap,omitempty"`
	Screenshot *ScreenshotMismatch `json:"screenshot_mismatch,omitempty"`
}

// TimelineSummary condenses the synchronizer output for the report payload.
type TimelineSummary struct {
	EventCount   int            `json:"event_count"`
	MatchedPairs int            `json:"matched_pairs"`
	SyncQuality  float64        `json:"sync_quality"`
	Gaps         []timeline.Gap `json:"gaps"`
}

// ContactSummary caps the overlap list for payload size while keeping full
// counts.
type ContactSummary struct {
	CommonCount int                    `json:"common_count"`
	OnlyOnA     int                    `json:"only_on_a"`
	OnlyOnB     int                    `json:"only_on_b"`
	Overlaps    []match.ContactOverlap `json:"overlaps"`
}

// ThreadSummary caps the thread match list while keeping full counts.
type ThreadSummary struct {
	ThreadCount int                 `json:"thread_count"`
	CommonCount int                 `json:"common_count"`
	Matches     []match.ThreadMatch `json:"matches"`
}

// ConflictReport is the single JSON-serializable output of one comparison
// run. Immutable once built; persistence and rendering happen elsewhere.
type ConflictReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Pairing  pairing.Result  `json:"pairing"`
	Contacts ContactSummary  `json:"contacts"`
	Threads  ThreadSummary   `json:"threads"`
	Timeline TimelineSummary `json:"timeline"`

	Discrepancies   []Discrepancy    `json:"discrepancies"`
	CountsByKind    map[Kind]int     `json:"counts_by_kind"`
	Histogram       map[Severity]int `json:"severity_histogram"`
	Recommendations []string         `json:"recommendations"`
}

// CountsByKind tallies discrepancies per kind. All four kinds are present in
// the result so renderers get explicit zeroes.
func CountsByKind(list []Discrepancy) map[Kind]int {
	counts := map[Kind]int{
		KindDeletedMessage:     0,
		KindEditedMessage:      0,
		KindTimeGap:            0,
		KindScreenshotMismatch: 0,
	}
	for _, d := range list {
		counts[d.Kind]++
	}
	return counts
}

// CountByKind tallies discrepancies of one kind.
func (r *ConflictReport) CountByKind(kind Kind) int {
	count := 0
	for _, d := range r.Discrepancies {
		if d.Kind == kind {
			count++
		}
	}
	return count
}
