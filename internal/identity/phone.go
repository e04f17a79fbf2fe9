package identity

import (
	"sort"
	"strings"
)

// CanonicalPhone is a normalized identity key: the last ten digits of a
// phone number with everything else stripped.
type CanonicalPhone string

// canonicalDigits is the suffix length kept after stripping. Ten digits
// covers national numbers and drops country-code prefixes, so "+15551234567"
// and "555-123-4567" normalize identically.
const canonicalDigits = 10

// NormalizePhone strips all non-digit characters from raw and returns the
// last ten digits, or fewer if the input is shorter. Empty or digit-free
// input yields the empty canonical phone.
//
// Two empty canonical phones compare equal, so contacts without any phone
// number would spuriously match each other; callers that index by canonical
// phone must skip empty keys. Kept as an explicit caller obligation rather
// than a sentinel value because changing the key shape has evidentiary
// consequences downstream.
func NormalizePhone(raw string) CanonicalPhone {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > canonicalDigits {
		digits = digits[len(digits)-canonicalDigits:]
	}
	return CanonicalPhone(digits)
}

// ThreadKey builds a stable conversation key from a participant pair: the
// sorted, comma-joined canonical forms. Order of arguments never matters.
func ThreadKey(a, b CanonicalPhone) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "," + string(b)
}

// ParticipantsKey builds the same stable key over an arbitrary participant
// set, used when hashing group conversations.
func ParticipantsKey(participants []CanonicalPhone) string {
	keys := make([]string, len(participants))
	for i, p := range participants {
		keys[i] = string(p)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
