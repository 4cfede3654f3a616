package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_NilTrace(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.TotalChoices)
	assert.Zero(t, summary.ShockRate)
	assert.NotNil(t, summary.ChoiceDistribution)
}

func TestSummarize_EmptyTrace(t *testing.T) {
	summary := Summarize(NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions}))

	assert.Zero(t, summary.TotalChoices)
	assert.Zero(t, summary.MeanGap)
	assert.Zero(t, summary.UniqueSchools)
	assert.Zero(t, summary.Years)
}

func TestSummarize_PopulatedTrace(t *testing.T) {
	// GIVEN a trace with four choices, four shock draws, and two years
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordChoice(ChoiceRecord{FamilyID: 3, SchoolID: 0, Gap: 0.5, Adjusted: true})
	st.RecordChoice(ChoiceRecord{FamilyID: 4, SchoolID: 0, Gap: -0.5, Adjusted: true})
	st.RecordChoice(ChoiceRecord{FamilyID: 5, SchoolID: 2, Gap: 1.0})
	st.RecordChoice(ChoiceRecord{FamilyID: 6, SchoolID: 0, Gap: 0.2})
	st.RecordShock(ShockRecord{SchoolID: 0, Shocked: true})
	st.RecordShock(ShockRecord{SchoolID: 1})
	st.RecordShock(ShockRecord{SchoolID: 2})
	st.RecordShock(ShockRecord{SchoolID: 0})
	st.RecordYear(YearRecord{Year: 0})
	st.RecordYear(YearRecord{Year: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts, distribution, and rates follow the records
	assert.Equal(t, 4, summary.TotalChoices)
	assert.Equal(t, 2, summary.AdjustedCount)
	assert.InDelta(t, 0.3, summary.MeanGap, 1e-12)
	assert.Equal(t, 2, summary.UniqueSchools)
	assert.Equal(t, map[int]int{0: 3, 2: 1}, summary.ChoiceDistribution)
	assert.Equal(t, 4, summary.ShockDraws)
	assert.Equal(t, 1, summary.Shocks)
	assert.InDelta(t, 0.25, summary.ShockRate, 1e-12)
	assert.Equal(t, 2, summary.Years)
}
