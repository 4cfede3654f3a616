package sim

import "fmt"

// Score is a family's utility for a school:
// w.Prestige*prestige + w.Efficacy*efficacy - w.Cost*tuition.
func Score(w Weights, s *School) float64 {
	return w.Prestige*s.Prestige + w.Efficacy*s.Efficacy - w.Cost*s.Tuition
}

// Choice is the result of the choice policy.
type Choice struct {
	School *School
	Score  float64
}

// Choose scores every school in roster order and returns the first one
// attaining the maximum. Ties therefore go to the lowest roster index.
// Returns ErrEmptyRoster when schools is empty.
func Choose(w Weights, schools []*School) (Choice, error) {
	if len(schools) == 0 {
		return Choice{}, fmt.Errorf("choose: %w", ErrEmptyRoster)
	}
	bestIdx := 0
	bestScore := Score(w, schools[0])
	for i := 1; i < len(schools); i++ {
		// strict > keeps the first occurrence on ties
		if sc := Score(w, schools[i]); sc > bestScore {
			bestScore = sc
			bestIdx = i
		}
	}
	return Choice{School: schools[bestIdx], Score: bestScore}, nil
}
