package bookreturnsvc

import "github.com/samber/lo"

// OCR output from the shelf camera is noisy: the same spine label rarely
// reads identically twice. Two fragments count as the same label when
// their normalized edit distance is under a length-dependent threshold.

func levenshtein(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(min(prev[j]+1, curr[j-1]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func similarFragments(existing, current string) bool {
	if existing == "" || current == "" {
		return false
	}

	le, lc := len([]rune(existing)), len([]rune(current))
	if abs(le-lc) > 2 {
		return false
	}

	maxLen := le
	if lc > maxLen {
		maxLen = lc
	}

	// Shorter labels get stricter thresholds.
	var threshold float64
	switch {
	case maxLen <= 3:
		threshold = 1.0 / 3.0
	case maxLen <= 5:
		threshold = 2.0 / 5.0
	default:
		threshold = 1.0 / 2.0
	}

	dist := levenshtein(existing, current)
	return float64(dist)/float64(maxLen) <= threshold
}

// newFragments returns the current fragments that match nothing from the
// previous scan. Fragment counts shrinking means books left the shelf, not
// that labels appeared, so the diff only runs when the set grew.
func newFragments(previous, current []string) []string {
	if len(current) == 0 || len(current) <= len(previous) {
		return nil
	}
	return lo.Filter(current, func(c string, _ int) bool {
		return !lo.SomeBy(previous, func(p string) bool {
			return similarFragments(p, c)
		})
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
