package match

import (
	"testing"

	"crosscheck/internal/evidence"
)

func TestContactsNameMismatch(t *testing.T) {
	contactsA := []evidence.Contact{{DisplayName: "John", Phones: []string{"+1 (555) 123-4567"}}}
	contactsB := []evidence.Contact{{DisplayName: "Johnny", Phones: []string{"5551234567"}}}

	result := Contacts(contactsA, contactsB)
	if len(result.Overlaps) != 1 {
		t.Fatalf("overlaps = %d, want 1", len(result.Overlaps))
	}
	overlap := result.Overlaps[0]
	if !overlap.NameMismatch {
		t.Error("name_mismatch should be true for John vs Johnny")
	}
	if overlap.Phone != "5551234567" {
		t.Errorf("phone = %q", overlap.Phone)
	}
	if overlap.Confidence >= 1.0 {
		t.Errorf("mismatched names should lower confidence, got %v", overlap.Confidence)
	}
	if len(result.OnlyOnA) != 0 || len(result.OnlyOnB) != 0 {
		t.Error("no residuals expected")
	}
}

func TestContactsCaseInsensitiveNames(t *testing.T) {
	result := Contacts(
		[]evidence.Contact{{DisplayName: "MOM", Phones: []string{"5550001111"}}},
		[]evidence.Contact{{DisplayName: "mom", Phones: []string{"555-000-1111"}}},
	)
	if len(result.Overlaps) != 1 || result.Overlaps[0].NameMismatch {
		t.Errorf("case-only difference should not be a mismatch: %+v", result.Overlaps)
	}
	if result.Overlaps[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Overlaps[0].Confidence)
	}
}

func TestContactsResiduals(t *testing.T) {
	contactsA := []evidence.Contact{
		{DisplayName: "Shared", Phones: []string{"5550001111"}},
		{DisplayName: "Only A", Phones: []string{"5559998888"}},
	}
	contactsB := []evidence.Contact{
		{DisplayName: "Shared", Phones: []string{"5550001111"}},
		{DisplayName: "Only B", Phones: []string{"5557776666"}},
	}

	result := Contacts(contactsA, contactsB)
	if len(result.Overlaps) != 1 {
		t.Errorf("overlaps = %d, want 1", len(result.Overlaps))
	}
	if len(result.OnlyOnA) != 1 || result.OnlyOnA[0].DisplayName != "Only A" {
		t.Errorf("OnlyOnA = %+v", result.OnlyOnA)
	}
	if len(result.OnlyOnB) != 1 || result.OnlyOnB[0].DisplayName != "Only B" {
		t.Errorf("OnlyOnB = %+v", result.OnlyOnB)
	}
}

func TestContactsEmptyPhonesNeverMatch(t *testing.T) {
	result := Contacts(
		[]evidence.Contact{{DisplayName: "No Phone A"}},
		[]evidence.Contact{{DisplayName: "No Phone B"}, {DisplayName: "Garbage", Phones: []string{"n/a"}}},
	)
	if len(result.Overlaps) != 0 {
		t.Errorf("contacts without digits should not match: %+v", result.Overlaps)
	}
	if len(result.OnlyOnA) != 1 || len(result.OnlyOnB) != 2 {
		t.Errorf("residuals = %d/%d, want 1/2", len(result.OnlyOnA), len(result.OnlyOnB))
	}
}

func TestContactsDuplicateKeysFirstSeenWins(t *testing.T) {
	contactsB := []evidence.Contact{
		{DisplayName: "First", Phones: []string{"5550001111"}},
		{DisplayName: "Second", Phones: []string{"5550001111"}},
	}
	result := Contacts(
		[]evidence.Contact{{DisplayName: "First", Phones: []string{"5550001111"}}},
		contactsB,
	)
	if len(result.Overlaps) != 1 || result.Overlaps[0].NameB != "First" {
		t.Errorf("duplicate canonical phones should resolve to first-seen B contact: %+v", result.Overlaps)
	}
	// The shadowed duplicate remains a B residual.
	if len(result.OnlyOnB) != 1 || result.OnlyOnB[0].DisplayName != "Second" {
		t.Errorf("OnlyOnB = %+v", result.OnlyOnB)
	}
}
