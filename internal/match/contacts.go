package match

import (
	"strings"

	"crosscheck/internal/evidence"
	"crosscheck/internal/identity"
)

// Contact overlap confidence levels. A shared canonical phone is strong
// evidence on its own; a conflicting display name weakens it slightly
// without breaking the match.
const (
	contactConfidenceExact    = 1.0
	contactConfidenceMismatch = 0.85
)

// ContactOverlap records one cross-device contact pair.
type ContactOverlap struct {
	Phone        identity.CanonicalPhone `json:"phone"`
	NameA        string                  `json:"name_a"`
	NameB        string                  `json:"name_b"`
	NameMismatch bool                    `json:"name_mismatch"`
	Confidence   float64                 `json:"confidence"`
}

// ContactResult holds the matched pairs and the one-sided residuals.
type ContactResult struct {
	Overlaps []ContactOverlap   `json:"overlaps"`
	OnlyOnA  []evidence.Contact `json:"only_on_a"`
	OnlyOnB  []evidence.Contact `json:"only_on_b"`
}

// Contacts pairs device-A contacts with device-B contacts by canonical
// phone. For each A contact the first of its phones with a B hit wins;
// duplicate canonical phones on B resolve to the first-seen B contact.
// Contacts without any usable phone number never match (empty canonical
// keys are skipped when indexing).
func Contacts(contactsA, contactsB []evidence.Contact) ContactResult {
	type indexed struct {
		contact evidence.Contact
		pos     int
	}
	indexB := make(map[identity.CanonicalPhone]indexed)
	for pos, contact := range contactsB {
		for _, raw := range contact.Phones {
			phone := identity.NormalizePhone(raw)
			if phone == "" {
				continue
			}
			if _, taken := indexB[phone]; !taken {
				indexB[phone] = indexed{contact: contact, pos: pos}
			}
		}
	}

	result := ContactResult{}
	matchedB := make(map[int]bool)

	for _, contactA := range contactsA {
		var hit *indexed
		var hitPhone identity.CanonicalPhone
		for _, raw := range contactA.Phones {
			phone := identity.NormalizePhone(raw)
			if phone == "" {
				continue
			}
			if entry, ok := indexB[phone]; ok {
				hit = &entry
				hitPhone = phone
				break
			}
		}
		if hit == nil {
			result.OnlyOnA = append(result.OnlyOnA, contactA)
			continue
		}

		mismatch := !strings.EqualFold(
			strings.TrimSpace(contactA.DisplayName),
			strings.TrimSpace(hit.contact.DisplayName),
		)
		confidence := contactConfidenceExact
		if mismatch {
			confidence = contactConfidenceMismatch
		}
		result.Overlaps = append(result.Overlaps, ContactOverlap{
			Phone:        hitPhone,
			NameA:        contactA.DisplayName,
			NameB:        hit.contact.DisplayName,
			NameMismatch: mismatch,
			Confidence:   confidence,
		})
		matchedB[hit.pos] = true
	}

	for pos, contact := range contactsB {
		if !matchedB[pos] {
			result.OnlyOnB = append(result.OnlyOnB, contact)
		}
	}
	return result
}
