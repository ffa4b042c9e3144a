package match

import "math"

// SimilarityFunc scores two names on a 0-100 scale, 100 meaning identical.
type SimilarityFunc func(a, b string) float64

// Jaro computes the Jaro similarity of a and b in [0, 1].
// Comparison is rune-wise and case-sensitive; an empty string scores 0 against anything.
func Jaro(a, b string) float64 {
	s1 := []rune(a)
	s2 := []rune(b)
	return jaro(s1, s2)
}

// JaroWinkler computes the Jaro-Winkler similarity of a and b in [0, 1].
// The common-prefix bonus (up to 4 runes, scaling factor 0.1) is applied only
// when the Jaro similarity exceeds 0.7.
func JaroWinkler(a, b string) float64 {
	s1 := []rune(a)
	s2 := []rune(b)

	weight := jaro(s1, s2)
	if weight <= 0.7 {
		return weight
	}

	limit := min(len(s1), len(s2), 4)
	prefix := 0
	for prefix < limit && s1[prefix] == s2[prefix] {
		prefix++
	}

	return weight + float64(prefix)*0.1*(1.0-weight)
}

// JaroWinklerScore is the default SimilarityFunc: Jaro-Winkler scaled to 0-100.
func JaroWinklerScore(a, b string) float64 {
	return JaroWinkler(a, b) * 100
}

func jaro(s1, s2 []rune) float64 {
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	searchRange := max(len(s1), len(s2))/2 - 1
	if searchRange < 0 {
		searchRange = 0
	}

	flags1 := make([]bool, len(s1))
	flags2 := make([]bool, len(s2))

	common := 0
	for i, r := range s1 {
		lo := max(0, i-searchRange)
		hi := min(i+searchRange, len(s2)-1)
		for j := lo; j <= hi; j++ {
			if !flags2[j] && s2[j] == r {
				flags1[i] = true
				flags2[j] = true
				common++
				break
			}
		}
	}
	if common == 0 {
		return 0
	}

	// Count matched runes that appear in a different order.
	transpositions := 0
	k := 0
	for i := range s1 {
		if !flags1[i] {
			continue
		}
		for !flags2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}
	transpositions /= 2

	m := float64(common)
	return (m/float64(len(s1)) + m/float64(len(s2)) + (m-float64(transpositions))/m) / 3
}

// roundScore rounds a score to two decimals.
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
