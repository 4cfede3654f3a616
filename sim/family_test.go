package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnowak10/syst/sim/internal/testutil"
)

// recordingAdjuster captures the gaps it receives.
type recordingAdjuster struct {
	ids  []int
	gaps []float64
}

func (r *recordingAdjuster) Adjust(familyID int, gap float64) bool {
	r.ids = append(r.ids, familyID)
	r.gaps = append(r.gaps, gap)
	return true
}

func TestSampleFamily_IndependentPriorities(t *testing.T) {
	cfg := DefaultConfig()
	src := &testutil.ScriptedSource{
		Exponentials: []float64{1.5},
		Ints:         []int{25, 25, 50},
		Normals:      []float64{-0.2},
	}

	f, err := SampleFamily(7, &cfg, nil, src)

	require.NoError(t, err)
	assert.Equal(t, 7, f.ID)
	assert.InDelta(t, 350.0, f.Wealth, 1e-9)
	assertWeights(t, Weights{0.25, 0.25, 0.5}, f.Priorities)
	assert.InDelta(t, -20.0, f.Location, 1e-9)
}

func TestSampleFamily_PopulationPriorities(t *testing.T) {
	// GIVEN families that adopt the population weights
	cfg := DefaultConfig()
	cfg.PrioritySource = PrioritySourcePopulation
	pop := mustPopulation(t, Weights{0.3, 0.3, 0.3}, 0.01)
	src := &testutil.ScriptedSource{}

	f, err := SampleFamily(3, &cfg, pop, src)

	// THEN priorities are the normalized population weights and no integer
	// draws are consumed
	require.NoError(t, err)
	assertWeights(t, Weights{1.0 / 3, 1.0 / 3, 1.0 / 3}, f.Priorities)
	assert.Zero(t, src.IntCalls)
}

func TestSampleFamily_NaNWealth(t *testing.T) {
	cfg := DefaultConfig()
	src := &testutil.ScriptedSource{Exponentials: []float64{math.NaN()}}

	_, err := SampleFamily(3, &cfg, nil, src)

	assert.ErrorIs(t, err, ErrNumericDomain)
}

func TestFamilyStep_PaysTuitionAndClosesGap(t *testing.T) {
	tests := []struct {
		name         string
		prestige     float64
		efficacy     float64
		wantPrestige float64
		wantGap      float64
	}{
		{"over-performing school gains prestige", 0, 1, 0.5, 1},
		{"under-performing school loses prestige", 1, 0.2, 0.6, -0.8},
		{"accurate school is unchanged", 0.4, 0.4, 0.4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a single school and an efficacy-seeking family
			cfg := DefaultConfig()
			school := testSchool(0, tt.prestige, tt.efficacy, 0.5)
			school.Endowment = 10
			f, err := NewFamily(3, 100, Weights{0, 1, 0}, 0)
			require.NoError(t, err)
			adj := &recordingAdjuster{}

			// WHEN the family steps
			out, err := f.Step([]*School{school}, &cfg, adj)

			// THEN tuition moves to the school and prestige moves toward efficacy
			require.NoError(t, err)
			assert.InDelta(t, 10.5, school.Endowment, 1e-12)
			assert.InDelta(t, tt.wantPrestige, school.Prestige, 1e-12)
			assert.InDelta(t, tt.wantGap, out.Gap, 1e-12)
			assert.Equal(t, tt.prestige, out.PrestigeBefore)
			assert.Equal(t, school.Prestige, out.PrestigeAfter)
			assert.Equal(t, 100.0, f.Wealth, "wealth untouched by default")

			// AND the gap is reported once, with the family's id
			assert.Equal(t, []int{3}, adj.ids)
			assert.InDelta(t, tt.wantGap, adj.gaps[0], 1e-12)
			assert.True(t, out.Adjusted)
		})
	}
}

func TestFamilyStep_DeductTuition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeductTuition = true
	school := testSchool(0, 0.5, 0.5, 0.25)
	f, err := NewFamily(5, 100, Weights{1, 0, 0}, 0)
	require.NoError(t, err)

	_, err = f.Step([]*School{school}, &cfg, nil)

	require.NoError(t, err)
	assert.InDelta(t, 99.75, f.Wealth, 1e-12)
}

func TestFamilyStep_EmptyRoster(t *testing.T) {
	cfg := DefaultConfig()
	f, err := NewFamily(5, 100, Weights{1, 0, 0}, 0)
	require.NoError(t, err)

	_, err = f.Step(nil, &cfg, nil)

	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestNewFamily_RejectsBadPriorities(t *testing.T) {
	_, err := NewFamily(0, 10, Weights{-0.1, 0.5, 0.6}, 0)
	assert.ErrorIs(t, err, ErrNumericDomain)
}
