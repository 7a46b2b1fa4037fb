package domain

import "math"

// RankTier is a named milestone at a fraction of a puzzle's total score.
type RankTier struct {
	Name     string
	Fraction float64
}

// RankTiers is the ordered tier table, lowest first.
var RankTiers = []RankTier{
	{"Beginner", 0},
	{"Good Start", 0.02},
	{"Moving Up", 0.05},
	{"Good", 0.08},
	{"Solid", 0.15},
	{"Nice", 0.25},
	{"Great", 0.40},
	{"Amazing", 0.50},
	{"Genius", 0.70},
	{"Queen Bee", 1.00},
}

// Points computes the value of a valid answer word. Four-letter words score
// 1, longer words score their length, and pangrams score length plus 7.
// It assumes word has already been confirmed to be a valid answer.
func Points(word string, isPangram bool) int {
	if isPangram {
		return len(word) + 7
	}
	if len(word) == 4 {
		return 1
	}
	return len(word)
}

// RankFor returns the name of the highest tier reached at score out of
// totalScore. A score exactly on a tier boundary resolves to that tier.
func RankFor(score, totalScore int) string {
	if totalScore == 0 {
		return RankTiers[0].Name
	}
	pct := float64(score) / float64(totalScore)
	name := RankTiers[0].Name
	for _, t := range RankTiers {
		if pct >= t.Fraction {
			name = t.Name
		}
	}
	return name
}

// NextRank returns the tier strictly above the current one and the minimum
// score needed to reach it. ok is false at the top tier or when totalScore
// is zero.
func NextRank(score, totalScore int) (name string, scoreNeeded int, ok bool) {
	if totalScore == 0 {
		return "", 0, false
	}
	pct := float64(score) / float64(totalScore)
	for i := len(RankTiers) - 1; i >= 0; i-- {
		if pct < RankTiers[i].Fraction {
			continue
		}
		if i == len(RankTiers)-1 {
			return "", 0, false
		}
		next := RankTiers[i+1]
		return next.Name, int(math.Ceil(next.Fraction * float64(totalScore))), true
	}
	return "", 0, false
}
