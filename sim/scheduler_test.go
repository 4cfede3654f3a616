package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnowak10/syst/sim/internal/testutil"
	"github.com/wnowak10/syst/sim/trace"
)

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "populating", PhasePopulating.String())
	assert.Equal(t, "activating", PhaseActivating.String())
	assert.Equal(t, "culling", PhaseCulling.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

func TestScheduler_EmptyRoster(t *testing.T) {
	cfg := DefaultConfig()
	pop := mustPopulation(t, cfg.InitialWeights, cfg.WeightDelta)
	s := newScheduler(&cfg, nil, pop, NewSources(NewSimulationKey(1)), nil)

	err := s.RunYear(0)

	assert.ErrorIs(t, err, ErrEmptyRoster)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestScheduler_ActivatesEveryEntityOnce(t *testing.T) {
	// GIVEN 3 schools, 4 families per year, and decision tracing
	cfg := DefaultConfig()
	cfg.NumFamilies = 4
	cfg.TraceLevel = "decisions"
	m, err := NewModel(cfg, NewSources(NewSimulationKey(11)))
	require.NoError(t, err)

	// WHEN one year runs
	require.NoError(t, m.Step())

	// THEN each school drew one shock and each family chose once
	require.Len(t, m.Trace.Shocks, 3)
	require.Len(t, m.Trace.Choices, 4)
	seen := map[int]bool{}
	for _, s := range m.Trace.Shocks {
		assert.False(t, seen[s.SchoolID], "school %d activated twice", s.SchoolID)
		seen[s.SchoolID] = true
	}
}

func TestScheduler_FamilyIDsAreContiguousAndNeverReused(t *testing.T) {
	// GIVEN 3 schools and 5 families per year
	cfg := DefaultConfig()
	cfg.TraceLevel = "decisions"
	m, err := NewModel(cfg, NewSources(NewSimulationKey(2)))
	require.NoError(t, err)

	// WHEN two years run
	require.NoError(t, m.Run(2))

	// THEN year 0 used ids 3..7 and year 1 used ids 8..12
	ids := map[int][]int{}
	for _, c := range m.Trace.Choices {
		ids[c.Year] = append(ids[c.Year], c.FamilyID)
	}
	assert.ElementsMatch(t, []int{3, 4, 5, 6, 7}, ids[0])
	assert.ElementsMatch(t, []int{8, 9, 10, 11, 12}, ids[1])
}

func TestScheduler_ActivationOrderIsObservable(t *testing.T) {
	// GIVEN one school whose shock always fires, and a scripted activation order
	newCfg := func() Config {
		cfg := DefaultConfig()
		cfg.NumSchools = 1
		cfg.NumFamilies = 1
		cfg.GrowthRate = 0
		cfg.ScandalProbability = 0.5
		cfg.ScandalFactor = 0.75
		cfg.PrioritySource = PrioritySourcePopulation
		cfg.Schools = []SchoolSpec{{Endowment: 1, Prestige: 1, Efficacy: 1, Tuition: ptr(0.0)}}
		return cfg
	}
	run := func(reverse bool) float64 {
		src := NewSources(NewSimulationKey(5))
		src.Shocks = &testutil.ScriptedSource{Categories: []int{1}}
		src.Scheduler = &testutil.ScriptedSource{Reverse: reverse}
		m, err := NewModel(newCfg(), src)
		require.NoError(t, err)
		require.NoError(t, m.Step())
		return m.Schools()[0].Prestige
	}

	// WHEN the school activates first, the family sees the scandal:
	// 0.75 + 0.5*(1-0.75)
	assert.InDelta(t, 0.875, run(false), 1e-12)
	// WHEN the family activates first, the scandal lands afterwards: 1*0.75
	assert.InDelta(t, 0.75, run(true), 1e-12)
}

func TestScheduler_NumericErrorAbortsYearAndCulls(t *testing.T) {
	// GIVEN a families source that yields a NaN wealth draw
	src := NewSources(NewSimulationKey(1))
	src.Families = &testutil.ScriptedSource{Exponentials: []float64{math.NaN()}}
	m, err := NewModel(DefaultConfig(), src)
	require.NoError(t, err)

	// WHEN the year runs
	err = m.Step()

	// THEN the error propagates and no family survives
	assert.ErrorIs(t, err, ErrNumericDomain)
	assert.Empty(t, m.Families())
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Zero(t, m.Year())
}

func TestScheduler_DeferredModeKeepsInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumFamilies = 50
	cfg.Years = 20
	cfg.WeightUpdate = WeightUpdateDeferred
	m, err := NewModel(cfg, NewSources(NewSimulationKey(8)))
	require.NoError(t, err)

	require.NoError(t, m.Run(cfg.Years))

	w := m.Population()
	assert.True(t, w.InUnitRange())
	assert.InDelta(t, cfg.InitialWeights.Sum(), w.Sum(), 1e-9)
	assert.Less(t, w.Prestige, cfg.InitialWeights.Prestige, "a thousand families move prestige weight")
}

func TestScheduler_TraceLevelNoneRecordsYearsOnly(t *testing.T) {
	cfg := DefaultConfig()
	m, err := NewModel(cfg, NewSources(NewSimulationKey(4)))
	require.NoError(t, err)

	require.NoError(t, m.Run(3))

	assert.Equal(t, trace.TraceLevelNone, m.Trace.Config.Level)
	assert.Empty(t, m.Trace.Choices)
	assert.Empty(t, m.Trace.Shocks)
	assert.Len(t, m.Trace.Years, 3)
}
