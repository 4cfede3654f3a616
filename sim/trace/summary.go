package trace

import "gonum.org/v1/gonum/stat"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalChoices       int         `json:"total_choices"`
	AdjustedCount      int         `json:"adjusted_count"`
	MeanGap            float64     `json:"mean_gap"`
	UniqueSchools      int         `json:"unique_schools"`
	ChoiceDistribution map[int]int `json:"choice_distribution"` // school ID → families that chose it
	ShockDraws         int         `json:"shock_draws"`
	Shocks             int         `json:"shocks"`
	ShockRate          float64     `json:"shock_rate"`
	Years              int         `json:"years"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ChoiceDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.Years = len(st.Years)
	summary.TotalChoices = len(st.Choices)
	if len(st.Choices) > 0 {
		gaps := make([]float64, len(st.Choices))
		for i, c := range st.Choices {
			summary.ChoiceDistribution[c.SchoolID]++
			gaps[i] = c.Gap
			if c.Adjusted {
				summary.AdjustedCount++
			}
		}
		summary.MeanGap = stat.Mean(gaps, nil)
	}
	summary.UniqueSchools = len(summary.ChoiceDistribution)

	summary.ShockDraws = len(st.Shocks)
	for _, s := range st.Shocks {
		if s.Shocked {
			summary.Shocks++
		}
	}
	if summary.ShockDraws > 0 {
		summary.ShockRate = float64(summary.Shocks) / float64(summary.ShockDraws)
	}

	return summary
}
