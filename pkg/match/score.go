package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Blend weights for the similarity score. Word overlap dominates; sequence
// similarity and length ratio temper it against reordered or truncated text.
const (
	weightSequence = 0.2
	weightJaccard  = 0.6
	weightLength   = 0.2

	importantWordBonus    = 0.05
	importantWordBonusCap = 0.15
)

// Similarity computes a bounded [0,1] similarity between two normalized
// strings. Identical strings score 1.0 before any floating-point math; if
// either side yields no keywords the score is 0.0. Symmetric and a pure
// function of its inputs.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ka := ExtractKeywords(a)
	kb := ExtractKeywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0.0
	}

	score := weightSequence*sequenceRatio(a, b) +
		weightJaccard*jaccard(ka, kb) +
		weightLength*lengthRatio(a, b)
	score += sharedImportantBonus(ka, kb)

	return clamp01(score)
}

// sequenceRatio is an edit-distance similarity over the full strings:
// 1 - levenshtein/maxRuneLen.
func sequenceRatio(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// jaccard is the word-overlap similarity |A∩B| / |A∪B| over keyword sets.
func jaccard(ka, kb []string) float64 {
	sa := toSet(ka)
	sb := toSet(kb)
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// lengthRatio penalizes comparisons between strings of very different length:
// min/max of their whitespace word counts.
func lengthRatio(a, b string) float64 {
	wa := len(strings.Fields(a))
	wb := len(strings.Fields(b))
	if wa == 0 || wb == 0 {
		return 0.0
	}
	if wa > wb {
		wa, wb = wb, wa
	}
	return float64(wa) / float64(wb)
}

// sharedImportantBonus adds a capped bonus per important word present on both
// sides, so shared negations pull near-misses over the line.
func sharedImportantBonus(ka, kb []string) float64 {
	sb := toSet(kb)
	bonus := 0.0
	for _, t := range ka {
		if !IsImportantWord(t) {
			continue
		}
		if _, ok := sb[t]; ok {
			bonus += importantWordBonus
		}
	}
	if bonus > importantWordBonusCap {
		bonus = importantWordBonusCap
	}
	return bonus
}

func toSet(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
