package timeline

import (
	"fmt"
	"sort"
	"time"

	"crosscheck/internal/textutil"
)

// Options are the synchronization policy knobs.
type Options struct {
	// MatchWindow buckets events before cross-device pairing.
	MatchWindow time.Duration
	// SimilarityThreshold is the content similarity two same-window events
	// must exceed to be linked.
	SimilarityThreshold float64
	// GapThreshold is the minimum silence recorded as a gap.
	GapThreshold time.Duration
	// RangeStart/RangeEnd, when set, bound edge gaps at the requested
	// comparison period instead of the first/last observed event.
	RangeStart time.Time
	RangeEnd   time.Time
}

// Gap is one detected silence interval in the merged timeline.
type Gap struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Timeline is the result of one synchronization run.
type Timeline struct {
	Events       []Event `json:"events"`
	Gaps         []Gap   `json:"gaps"`
	MatchedPairs int     `json:"matched_pairs"`
	SyncQuality  float64 `json:"sync_quality"`
}

// state tracks the synchronizer's progress through its fixed phase order.
type state int

const (
	stateUnmerged state = iota
	stateMerged
	stateMatched
	stateGapped
)

type synchronizer struct {
	opts   Options
	state  state
	events []Event
	gaps   []Gap
	pairs  int
}

// Synchronize merges the two devices' events, pairs corresponding events,
// and detects silence gaps. Inputs are not mutated.
func Synchronize(eventsA, eventsB []Event, opts Options) *Timeline {
	if opts.MatchWindow <= 0 {
		opts.MatchWindow = 10 * time.Second
	}
	// Bucketing works in whole seconds; a sub-second window would divide by
	// zero during matching.
	if opts.MatchWindow < time.Second {
		opts.MatchWindow = time.Second
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.9
	}
	if opts.GapThreshold <= 0 {
		opts.GapThreshold = 6 * time.Hour
	}

	s := &synchronizer{opts: opts}
	s.merge(eventsA, eventsB)
	s.match()
	s.detectGaps()

	total := len(s.events)
	quality := 0.0
	if total > 0 {
		quality = float64(2*s.pairs) / float64(total)
	}
	return &Timeline{
		Events:       s.events,
		Gaps:         s.gaps,
		MatchedPairs: s.pairs,
		SyncQuality:  quality,
	}
}

// merge concatenates both devices' events and sorts by timestamp. Stable
// sort keeps device-A events ahead of device-B events at equal timestamps.
func (s *synchronizer) merge(eventsA, eventsB []Event) {
	s.mustBe(stateUnmerged, "merge")
	s.events = make([]Event, 0, len(eventsA)+len(eventsB))
	s.events = append(s.events, eventsA...)
	s.events = append(s.events, eventsB...)
	for i := range s.events {
		s.events[i].Partner = -1
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Timestamp.Before(s.events[j].Timestamp)
	})
	s.state = stateMerged
}

// match buckets events into fixed windows and, within each window, pairs one
// device-A event with one device-B event of the same type whose content
// similarity clears the threshold. Pairing is greedy in timestamp order, an
// explicit first-in-order tie-break. Unmatched events are flagged as present
// on one side only.
func (s *synchronizer) match() {
	s.mustBe(stateMerged, "match")

	buckets := make(map[int64][]int)
	order := make([]int64, 0)
	window := int64(s.opts.MatchWindow / time.Second)
	for i, event := range s.events {
		bucket := event.Timestamp.UTC().Unix() / window
		if _, seen := buckets[bucket]; !seen {
			order = append(order, bucket)
		}
		buckets[bucket] = append(buckets[bucket], i)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	for _, bucket := range order {
		indices := buckets[bucket]
		for _, i := range indices {
			if s.events[i].Source != SourceDeviceA || s.events[i].Partner >= 0 {
				continue
			}
			for _, j := range indices {
				if s.events[j].Source != SourceDeviceB || s.events[j].Partner >= 0 {
					continue
				}
				if s.events[j].Type != s.events[i].Type {
					continue
				}
				if textutil.Ratio(s.events[i].content, s.events[j].content) > s.opts.SimilarityThreshold {
					s.events[i].Partner = j
					s.events[j].Partner = i
					s.pairs++
					break
				}
			}
		}
	}

	for i := range s.events {
		if s.events[i].Partner >= 0 {
			continue
		}
		s.events[i].Conflict = true
		if s.events[i].Source == SourceDeviceA {
			s.events[i].ConflictKind = ConflictMissingOnB
			s.events[i].ConflictDetail = "event present on device_a only"
		} else {
			s.events[i].ConflictKind = ConflictMissingOnA
			s.events[i].ConflictDetail = "event present on device_b only"
		}
	}
	s.state = stateMatched
}

// detectGaps records every consecutive silence in the merged list exceeding
// the threshold, plus edge gaps against the requested range when one is set.
func (s *synchronizer) detectGaps() {
	s.mustBe(stateMatched, "detect gaps")
	defer func() { s.state = stateGapped }()

	if len(s.events) == 0 {
		return
	}

	if !s.opts.RangeStart.IsZero() {
		if lead := s.events[0].Timestamp.Sub(s.opts.RangeStart); lead > s.opts.GapThreshold {
			s.gaps = append(s.gaps, Gap{Start: s.opts.RangeStart, End: s.events[0].Timestamp, Duration: lead})
		}
	}
	for i := 1; i < len(s.events); i++ {
		delta := s.events[i].Timestamp.Sub(s.events[i-1].Timestamp)
		if delta > s.opts.GapThreshold {
			s.gaps = append(s.gaps, Gap{
				Start:    s.events[i-1].Timestamp,
				End:      s.events[i].Timestamp,
				Duration: delta,
			})
		}
	}
	if !s.opts.RangeEnd.IsZero() {
		last := s.events[len(s.events)-1].Timestamp
		if trail := s.opts.RangeEnd.Sub(last); trail > s.opts.GapThreshold {
			s.gaps = append(s.gaps, Gap{Start: last, End: s.opts.RangeEnd, Duration: trail})
		}
	}
}

func (s *synchronizer) mustBe(expected state, phase string) {
	if s.state != expected {
		panic(fmt.Sprintf("timeline: %s called in state %d", phase, s.state))
	}
}
