package diff

// levenshtein computes the edit distance between two strings using the
// classic single-row dynamic programming formulation with unit costs for
// insertion, deletion, and substitution.
func levenshtein(s1, s2 string) int {
	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}
	if len(s2) == 0 {
		return len(s1)
	}

	previous := make([]int, len(s2)+1)
	current := make([]int, len(s2)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 0; i < len(s1); i++ {
		current[0] = i + 1
		for j := 0; j < len(s2); j++ {
			insertion := previous[j+1] + 1
			deletion := current[j] + 1
			substitution := previous[j]
			if s1[i] != s2[j] {
				substitution++
			}
			current[j+1] = min(insertion, deletion, substitution)
		}
		previous, current = current, previous
	}

	return previous[len(s2)]
}
