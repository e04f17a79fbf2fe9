package textutil

// Ratio computes a similarity score in [0,1] between two strings after
// normalization: 2*LCS / (len(a)+len(b)) over runes, the classic
// sequence-match ratio. Identical inputs score 1.0; disjoint inputs 0.
func Ratio(a, b string) float64 {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matches := lcsLength(ra, rb)
	return 2.0 * float64(matches) / float64(len(ra)+len(rb))
}

// lcsLength returns the longest-common-subsequence length using a rolling
// two-row table. Message bodies are short; quadratic time is acceptable here.
func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
