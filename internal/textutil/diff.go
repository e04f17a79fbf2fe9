package textutil

import "strings"

// maxSummaryTerms caps how many added/removed words a change summary lists.
const maxSummaryTerms = 8

// ChangeSummary describes the word-level difference between two texts as a
// compact "+added -removed" string, preserving first-seen order from each
// side. Returns an empty string when the token sets are identical.
func ChangeSummary(a, b string) string {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)
	setA := make(map[string]struct{}, len(tokensA))
	for _, token := range tokensA {
		setA[token] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, token := range tokensB {
		setB[token] = struct{}{}
	}

	var parts []string
	appendTerms := func(tokens []string, other map[string]struct{}, prefix string) {
		seen := make(map[string]struct{})
		count := 0
		for _, token := range tokens {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			if _, shared := other[token]; shared {
				continue
			}
			if count >= maxSummaryTerms {
				parts = append(parts, prefix+"...")
				return
			}
			parts = append(parts, prefix+token)
			count++
		}
	}
	appendTerms(tokensB, setA, "+")
	appendTerms(tokensA, setB, "-")

	return strings.Join(parts, " ")
}
