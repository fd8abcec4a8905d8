package search

// Levenshtein returns the edit distance between a and b, counted in runes,
// with unit cost for insertion, deletion and substitution. It keeps a
// single row sized to the shorter input.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	s, t := []rune(a), []rune(b)
	if len(s) < len(t) {
		s, t = t, s
	}
	if len(t) == 0 {
		return len(s)
	}

	row := make([]int, len(t)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(s); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			above := row[j]
			row[j] = min(row[j-1]+1, above+1, diag+cost)
			diag = above
		}
	}
	return row[len(t)]
}

// Threshold is the edit distance tolerated between two tokens whose longer
// length is n: none up to 2 runes, one up to 4, then 30% with a floor of 2.
func Threshold(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	default:
		return max(2, n*3/10)
	}
}
