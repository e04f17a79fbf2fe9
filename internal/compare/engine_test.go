package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosscheck/internal/config"
	"crosscheck/internal/evidence"
	"crosscheck/internal/logging"
	"crosscheck/internal/report"
	"crosscheck/internal/services"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	return New(&cfg, nil, logging.NewNop())
}

func contact(name string, phones ...string) evidence.Contact {
	return evidence.Contact{DisplayName: name, Phones: phones}
}

func message(sender, recipient, body string, ts time.Time) evidence.Message {
	return evidence.Message{Sender: sender, Recipient: recipient, Body: body, Timestamp: ts}
}

// fixtureSnapshots builds two mostly-overlapping devices: shared contacts
// and threads, one message present on device A only.
func fixtureSnapshots() (*evidence.Snapshot, *evidence.Snapshot) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	shared := []evidence.Message{
		message("+15550001111", "+15550002222", "pickup is at three", base),
		message("+15550001111", "+15550002222", "running ten minutes late", base.Add(30*time.Minute)),
		message("+15550002222", "+15550001111", "ok see you there", base.Add(35*time.Minute)),
	}
	contacts := []evidence.Contact{
		contact("Alex", "+1-555-000-2222"),
		contact("Jordan", "+1-555-000-3333"),
		contact("Sam", "+1-555-000-4444"),
	}

	snapshotA := &evidence.Snapshot{
		Profile:  evidence.DeviceProfile{ID: "device-a", Role: evidence.RoleParent},
		Messages: append(append([]evidence.Message{}, shared...), message("+15550001111", "+15550002222", "do not tell your mother", base.Add(time.Hour))),
		Contacts: contacts,
	}
	snapshotB := &evidence.Snapshot{
		Profile:  evidence.DeviceProfile{ID: "device-b", Role: evidence.RoleChild},
		Messages: append([]evidence.Message{}, shared...),
		Contacts: contacts,
	}
	return snapshotA, snapshotB
}

func TestRunRejectsNilSnapshots(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Run(context.Background(), nil, nil, RunOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestRunProducesReport(t *testing.T) {
	engine := newTestEngine(t)
	snapshotA, snapshotB := fixtureSnapshots()

	now := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	rpt, err := engine.Run(context.Background(), snapshotA, snapshotB, RunOptions{Now: now})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rpt.RunID == "" {
		t.Error("run id missing")
	}
	if !rpt.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %s, want %s", rpt.GeneratedAt, now)
	}
	if rpt.Pairing.Relationship != "parent-child" {
		t.Errorf("relationship = %q", rpt.Pairing.Relationship)
	}
	if rpt.Contacts.CommonCount != 3 {
		t.Errorf("common contacts = %d, want 3", rpt.Contacts.CommonCount)
	}
	if rpt.CountByKind(report.KindDeletedMessage) != 1 {
		t.Errorf("deleted findings = %d, want 1", rpt.CountByKind(report.KindDeletedMessage))
	}
	if rpt.CountsByKind[report.KindDeletedMessage] != 1 || len(rpt.CountsByKind) != 4 {
		t.Errorf("counts by kind = %v, want all four kinds with one deletion", rpt.CountsByKind)
	}
	if rpt.Timeline.EventCount != 7 {
		t.Errorf("timeline events = %d, want 7", rpt.Timeline.EventCount)
	}
	if rpt.Timeline.MatchedPairs != 3 {
		t.Errorf("matched pairs = %d, want 3", rpt.Timeline.MatchedPairs)
	}
	if rpt.Histogram == nil {
		t.Fatal("histogram missing")
	}
	total := 0
	for _, count := range rpt.Histogram {
		total += count
	}
	if total != len(rpt.Discrepancies) {
		t.Errorf("histogram total = %d, discrepancies = %d", total, len(rpt.Discrepancies))
	}
}

func TestRunIdenticalDevices(t *testing.T) {
	engine := newTestEngine(t)
	_, snapshotB := fixtureSnapshots()
	clone := *snapshotB
	clone.Profile.ID = "device-a"

	rpt, err := engine.Run(context.Background(), &clone, snapshotB, RunOptions{Now: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rpt.Discrepancies) != 0 {
		t.Errorf("identical snapshots should yield no discrepancies, got %d", len(rpt.Discrepancies))
	}
	if rpt.Timeline.SyncQuality != 1.0 {
		t.Errorf("sync quality = %f, want 1.0", rpt.Timeline.SyncQuality)
	}
}

func TestRunCanceledContext(t *testing.T) {
	engine := newTestEngine(t)
	snapshotA, snapshotB := fixtureSnapshots()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Run(ctx, snapshotA, snapshotB, RunOptions{})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
}

func TestRunScreenshotsWithoutExtractor(t *testing.T) {
	engine := newTestEngine(t)
	snapshotA, snapshotB := fixtureSnapshots()

	rpt, err := engine.Run(context.Background(), snapshotA, snapshotB, RunOptions{
		ScreenshotPaths: []string{"exhibit1.png"},
		Now:             time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rpt.CountByKind(report.KindScreenshotMismatch); got != 1 {
		t.Errorf("screenshot findings = %d, want 1 degraded result", got)
	}
}

func TestContactSummaryCap(t *testing.T) {
	engine := newTestEngine(t)
	engine.cfg.Compare.MaxContactOverlaps = 2

	snapshotA, snapshotB := fixtureSnapshots()
	rpt, err := engine.Run(context.Background(), snapshotA, snapshotB, RunOptions{Now: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rpt.Contacts.Overlaps) != 2 {
		t.Errorf("overlap list = %d, want capped at 2", len(rpt.Contacts.Overlaps))
	}
	if rpt.Contacts.CommonCount != 3 {
		t.Errorf("common count = %d, want full 3", rpt.Contacts.CommonCount)
	}
}
