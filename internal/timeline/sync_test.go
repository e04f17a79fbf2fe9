package timeline

import (
	"testing"
	"time"

	"crosscheck/internal/evidence"
)

func snapshotWith(messages []evidence.Message, calls []evidence.Call) *evidence.Snapshot {
	return &evidence.Snapshot{
		Profile:  evidence.DeviceProfile{ID: "d"},
		Messages: messages,
		Calls:    calls,
	}
}

func msg(body string, ts time.Time) evidence.Message {
	return evidence.Message{Sender: "5550001111", Recipient: "5550002222", Body: body, Timestamp: ts}
}

func TestSynchronizeFullyMatched(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	messagesA := []evidence.Message{msg("first message", base), msg("second message", base.Add(time.Hour))}
	messagesB := []evidence.Message{msg("first message", base.Add(2 * time.Second)), msg("second message", base.Add(time.Hour))}

	eventsA := EventsFromSnapshot(snapshotWith(messagesA, nil), SourceDeviceA)
	eventsB := EventsFromSnapshot(snapshotWith(messagesB, nil), SourceDeviceB)

	tl := Synchronize(eventsA, eventsB, Options{})
	if tl.SyncQuality != 1.0 {
		t.Errorf("sync quality = %v, want 1.0", tl.SyncQuality)
	}
	if tl.MatchedPairs != 2 {
		t.Errorf("matched pairs = %d, want 2", tl.MatchedPairs)
	}
	for i, event := range tl.Events {
		if event.Conflict || event.Partner < 0 {
			t.Errorf("event %d should be matched: %+v", i, event)
		}
	}
	// Links are bidirectional.
	for i, event := range tl.Events {
		if tl.Events[event.Partner].Partner != i {
			t.Errorf("partner link not bidirectional at %d", i)
		}
	}
}

func TestSynchronizeOneSidedEvent(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	eventsA := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("only on a", base)}, nil), SourceDeviceA)

	tl := Synchronize(eventsA, nil, Options{})
	if len(tl.Events) != 1 {
		t.Fatalf("events = %d", len(tl.Events))
	}
	event := tl.Events[0]
	if !event.Conflict || event.ConflictKind != ConflictMissingOnB {
		t.Errorf("one-sided A event should be MISSING_ON_B: %+v", event)
	}
	if tl.SyncQuality != 0 {
		t.Errorf("sync quality = %v, want 0", tl.SyncQuality)
	}
}

func TestSynchronizeDissimilarContentNotMatched(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	eventsA := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("completely different", base)}, nil), SourceDeviceA)
	eventsB := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("nothing alike here", base)}, nil), SourceDeviceB)

	tl := Synchronize(eventsA, eventsB, Options{})
	if tl.MatchedPairs != 0 {
		t.Errorf("dissimilar events should not match, pairs = %d", tl.MatchedPairs)
	}
	kinds := map[ConflictKind]int{}
	for _, event := range tl.Events {
		kinds[event.ConflictKind]++
	}
	if kinds[ConflictMissingOnB] != 1 || kinds[ConflictMissingOnA] != 1 {
		t.Errorf("conflict kinds = %v", kinds)
	}
}

func TestSynchronizeTypeMismatchNotPaired(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	eventsA := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("outgoing call, 60s", base)}, nil), SourceDeviceA)
	eventsB := EventsFromSnapshot(snapshotWith(nil, []evidence.Call{{Caller: "5550001111", Callee: "5550002222", Timestamp: base, DurationSeconds: 60, Outgoing: true}}), SourceDeviceB)

	tl := Synchronize(eventsA, eventsB, Options{})
	if tl.MatchedPairs != 0 {
		t.Error("a message should never pair with a call")
	}
}

func TestGapBoundary(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		delta   time.Duration
		wantGap int
	}{
		{"just over threshold", 6*time.Hour + time.Minute, 1},
		{"just under threshold", 5*time.Hour + 59*time.Minute, 0},
		{"exactly threshold", 6 * time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := []evidence.Message{msg("first", base), msg("second", base.Add(tt.delta))}
			events := EventsFromSnapshot(snapshotWith(messages, nil), SourceDeviceA)

			tl := Synchronize(events, nil, Options{GapThreshold: 6 * time.Hour})
			if len(tl.Gaps) != tt.wantGap {
				t.Fatalf("gaps = %d, want %d", len(tl.Gaps), tt.wantGap)
			}
			if tt.wantGap == 1 {
				gap := tl.Gaps[0]
				if !gap.Start.Equal(base) || !gap.End.Equal(base.Add(tt.delta)) {
					t.Errorf("gap bounds = %v..%v", gap.Start, gap.End)
				}
			}
		})
	}
}

func TestEdgeGapsAgainstRequestedRange(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	events := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("lone event", base)}, nil), SourceDeviceA)

	tl := Synchronize(events, nil, Options{
		GapThreshold: 6 * time.Hour,
		RangeStart:   base.Add(-24 * time.Hour),
		RangeEnd:     base.Add(48 * time.Hour),
	})
	if len(tl.Gaps) != 2 {
		t.Fatalf("gaps = %d, want leading and trailing", len(tl.Gaps))
	}
	if !tl.Gaps[0].Start.Equal(base.Add(-24*time.Hour)) || !tl.Gaps[0].End.Equal(base) {
		t.Errorf("leading gap = %+v", tl.Gaps[0])
	}
	if !tl.Gaps[1].Start.Equal(base) || !tl.Gaps[1].End.Equal(base.Add(48*time.Hour)) {
		t.Errorf("trailing gap = %+v", tl.Gaps[1])
	}
}

func TestSynchronizeSubSecondWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	eventsA := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("same text", base)}, nil), SourceDeviceA)
	eventsB := EventsFromSnapshot(snapshotWith([]evidence.Message{msg("same text", base)}, nil), SourceDeviceB)

	tl := Synchronize(eventsA, eventsB, Options{MatchWindow: 500 * time.Millisecond})
	if tl.MatchedPairs != 1 {
		t.Errorf("matched pairs = %d, want 1 (window clamped to one second)", tl.MatchedPairs)
	}
}

func TestSynchronizeEmpty(t *testing.T) {
	tl := Synchronize(nil, nil, Options{})
	if tl.SyncQuality != 0 || len(tl.Events) != 0 || len(tl.Gaps) != 0 {
		t.Errorf("empty sync: %+v", tl)
	}
}

func TestEventsFromSnapshotSkipsUndated(t *testing.T) {
	snapshot := snapshotWith(
		[]evidence.Message{{Sender: "a", Recipient: "b", Body: "undated"}},
		[]evidence.Call{{Caller: "a", Callee: "b"}},
	)
	events := EventsFromSnapshot(snapshot, SourceDeviceA)
	if len(events) != 0 {
		t.Errorf("undated records should be skipped, got %d events", len(events))
	}
}
