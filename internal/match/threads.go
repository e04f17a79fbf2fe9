package match

import (
	"sort"

	"crosscheck/internal/evidence"
	"crosscheck/internal/identity"
)

// ThreadMatch summarizes cross-device overlap for one conversation thread.
type ThreadMatch struct {
	ThreadKey  string  `json:"thread_key"`
	CountA     int     `json:"count_a"`
	CountB     int     `json:"count_b"`
	Common     int     `json:"common_messages"`
	MissingOnA int     `json:"missing_on_a"`
	MissingOnB int     `json:"missing_on_b"`
	Confidence float64 `json:"match_confidence"`
}

// Threads groups each device's messages into threads and measures overlap
// per thread key present on either device. Messages without timestamps are
// excluded (they cannot be fingerprinted). Results are sorted by descending
// common count, then key, for deterministic output.
func Threads(fp identity.Fingerprinter, messagesA, messagesB []evidence.Message) []ThreadMatch {
	threadsA := groupFingerprints(fp, messagesA)
	threadsB := groupFingerprints(fp, messagesB)

	keys := make(map[string]struct{}, len(threadsA)+len(threadsB))
	for key := range threadsA {
		keys[key] = struct{}{}
	}
	for key := range threadsB {
		keys[key] = struct{}{}
	}

	matches := make([]ThreadMatch, 0, len(keys))
	for key := range keys {
		setA := threadsA[key]
		setB := threadsB[key]

		common := 0
		for fingerprint := range setA {
			if _, ok := setB[fingerprint]; ok {
				common++
			}
		}

		confidence := 0.0
		if larger := max(len(setA), len(setB)); larger > 0 {
			confidence = float64(common) / float64(larger)
		}

		matches = append(matches, ThreadMatch{
			ThreadKey:  key,
			CountA:     len(setA),
			CountB:     len(setB),
			Common:     common,
			MissingOnA: max(0, len(setB)-common),
			MissingOnB: max(0, len(setA)-common),
			Confidence: confidence,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Common != matches[j].Common {
			return matches[i].Common > matches[j].Common
		}
		return matches[i].ThreadKey < matches[j].ThreadKey
	})
	return matches
}

func groupFingerprints(fp identity.Fingerprinter, messages []evidence.Message) map[string]map[string]struct{} {
	threads := make(map[string]map[string]struct{})
	for _, m := range messages {
		fingerprint, ok := fp.Message(m.Sender, m.Recipient, m.Timestamp, m.Body)
		if !ok {
			continue
		}
		key := identity.ThreadKey(identity.NormalizePhone(m.Sender), identity.NormalizePhone(m.Recipient))
		set, ok := threads[key]
		if !ok {
			set = make(map[string]struct{})
			threads[key] = set
		}
		set[fingerprint] = struct{}{}
	}
	return threads
}
