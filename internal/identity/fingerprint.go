package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"crosscheck/internal/textutil"
)

// contentPrefixRunes is how much normalized body text participates in the
// fingerprint. Long messages stay distinguishable by their prefix while
// trailing formatting differences are absorbed.
const contentPrefixRunes = 64

// DefaultWindowSeconds is the default time bucket used when none is
// configured. Five seconds absorbs typical cross-device clock skew without
// merging distinct rapid-fire messages.
const DefaultWindowSeconds = 5

// Fingerprinter derives deterministic message fingerprints with a fixed
// time-bucket window.
type Fingerprinter struct {
	window time.Duration
}

// NewFingerprinter builds a Fingerprinter with the given bucket window in
// seconds. Non-positive values fall back to DefaultWindowSeconds.
func NewFingerprinter(windowSeconds int) Fingerprinter {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	return Fingerprinter{window: time.Duration(windowSeconds) * time.Second}
}

// Message fingerprints one message given its raw sender/recipient strings,
// timestamp, and body. Returns ok=false for messages without a usable
// timestamp; those are excluded from fingerprint-based matching rather than
// failing the run.
func (f Fingerprinter) Message(sender, recipient string, ts time.Time, body string) (string, bool) {
	if ts.IsZero() {
		return "", false
	}
	participants := []CanonicalPhone{NormalizePhone(sender), NormalizePhone(recipient)}
	return f.Compute(participants, ts, body), true
}

// Compute hashes (time bucket, sorted participant set, truncated normalized
// content) into a hex fingerprint. Identical inputs always produce identical
// fingerprints; the set-difference detectors rely on that.
func (f Fingerprinter) Compute(participants []CanonicalPhone, ts time.Time, content string) string {
	bucket := ts.UTC().Unix() / int64(f.window/time.Second)

	normalized := textutil.Normalize(content)
	runes := []rune(normalized)
	if len(runes) > contentPrefixRunes {
		normalized = string(runes[:contentPrefixRunes])
	}

	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(bucket, 10)))
	h.Write([]byte{0})
	h.Write([]byte(ParticipantsKey(participants)))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}

// Window reports the configured bucket duration.
func (f Fingerprinter) Window() time.Duration {
	return f.window
}
