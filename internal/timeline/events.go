package timeline

import (
	"fmt"
	"time"

	"crosscheck/internal/evidence"
	"crosscheck/internal/textutil"
)

// EventType distinguishes message events from call events.
type EventType string

const (
	EventMessage EventType = "message"
	EventCall    EventType = "call"
)

// Source tags which device an event was observed on. An event captured by
// both devices is kept as two entries, one per source, joined through
// Event.Partner; the merged timeline never collapses a matched pair into a
// single entry.
type Source string

const (
	SourceDeviceA Source = "device_a"
	SourceDeviceB Source = "device_b"
)

// ConflictKind classifies unmatched events.
type ConflictKind string

const (
	ConflictMissingOnA ConflictKind = "MISSING_ON_A"
	ConflictMissingOnB ConflictKind = "MISSING_ON_B"
)

// previewRunes caps event content previews in the merged timeline.
const previewRunes = 80

// Event is one entry in the merged cross-device timeline. Partner links the
// matched event on the other device by index into the same slice; -1 means
// unmatched.
type Event struct {
	Timestamp      time.Time    `json:"timestamp"`
	Type           EventType    `json:"type"`
	Source         Source       `json:"source"`
	Preview        string       `json:"preview,omitempty"`
	Conflict       bool         `json:"conflict"`
	ConflictKind   ConflictKind `json:"conflict_kind,omitempty"`
	ConflictDetail string       `json:"conflict_detail,omitempty"`
	Partner        int          `json:"partner,omitempty"`

	// content is the full normalized body used for similarity; not serialized.
	content string
}

// EventsFromSnapshot converts a device snapshot into timeline events,
// skipping records without timestamps.
func EventsFromSnapshot(snapshot *evidence.Snapshot, source Source) []Event {
	events := make([]Event, 0, len(snapshot.Messages)+len(snapshot.Calls))
	for _, m := range snapshot.Messages {
		if m.Timestamp.IsZero() {
			continue
		}
		events = append(events, Event{
			Timestamp: m.Timestamp,
			Type:      EventMessage,
			Source:    source,
			Preview:   textutil.Preview(m.Body, previewRunes),
			Partner:   -1,
			content:   m.Body,
		})
	}
	for _, c := range snapshot.Calls {
		if c.Timestamp.IsZero() {
			continue
		}
		direction := "incoming"
		if c.Outgoing {
			direction = "outgoing"
		}
		detail := fmt.Sprintf("%s call, %ds", direction, c.DurationSeconds)
		events = append(events, Event{
			Timestamp: c.Timestamp,
			Type:      EventCall,
			Source:    source,
			Preview:   detail,
			Partner:   -1,
			content:   detail,
		})
	}
	return events
}
