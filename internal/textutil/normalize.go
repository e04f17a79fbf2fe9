package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares text for cross-device comparison: NFC unicode
// normalization (iOS and Android emit different codepoint sequences for
// the same visible text), lowercasing, and whitespace collapsing.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// Preview returns the first max runes of text with whitespace collapsed,
// appending an ellipsis when truncated. Used for report payloads where the
// full body would bloat output or leak more content than needed.
func Preview(text string, max int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if max <= 0 || len(runes) <= max {
		return collapsed
	}
	return string(runes[:max]) + "..."
}

// Tokenize splits normalized text into lowercase word tokens. Punctuation
// separates tokens; single-character tokens are kept because OCR output and
// short replies ("k", "y") are common in message evidence.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// WordSet returns the unique token set of text.
func WordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		set[token] = struct{}{}
	}
	return set
}

// WordSetDiff counts tokens present in exactly one of the two texts. A zero
// result means the texts contain the same vocabulary, which is the bar a
// screenshot must clear to be reported as faithful.
func WordSetDiff(a, b string) int {
	setA := WordSet(a)
	setB := WordSet(b)
	diff := 0
	for token := range setA {
		if _, ok := setB[token]; !ok {
			diff++
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			diff++
		}
	}
	return diff
}
