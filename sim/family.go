package sim

import "fmt"

// Family is a transient participant: created at the start of a year, activated
// once, then discarded when the year is culled.
type Family struct {
	ID         int
	Wealth     float64
	Priorities Weights
	Location   float64 // descriptive; scoring ignores distance
}

// ChoiceOutcome describes everything one family step did.
type ChoiceOutcome struct {
	FamilyID       int
	SchoolID       int
	Score          float64
	Tuition        float64
	Gap            float64 // efficacy - prestige of the chosen school, before feedback
	PrestigeBefore float64
	PrestigeAfter  float64
	Adjusted       bool // population weights changed
}

// NewFamily builds a family with fixed attributes.
func NewFamily(id int, wealth float64, priorities Weights, location float64) (*Family, error) {
	if !isFinite(wealth) {
		return nil, fmt.Errorf("family %d wealth = %v: %w", id, wealth, ErrNumericDomain)
	}
	if !priorities.InUnitRange() {
		return nil, fmt.Errorf("family %d priorities %s: %w", id, priorities, ErrNumericDomain)
	}
	return &Family{ID: id, Wealth: wealth, Priorities: priorities, Location: location}, nil
}

// SampleFamily draws wealth (shifted exponential), priorities and location.
// With PrioritySourcePopulation the family adopts the population weights,
// normalized; otherwise it draws its own.
func SampleFamily(id int, cfg *Config, pop *PopulationWeights, src RandomSource) (*Family, error) {
	wealth := cfg.Sampling.WealthFloor + cfg.Sampling.WealthScale*src.Exponential()

	var priorities Weights
	drawn := false
	if cfg.PrioritySource == PrioritySourcePopulation && pop != nil {
		priorities, drawn = pop.Weights().Normalized()
	}
	if !drawn {
		priorities = SampleWeights(src)
	}

	location := src.Normal(0, cfg.Sampling.LocationStdDev)
	return NewFamily(id, wealth, priorities, location)
}

// Choose returns the school this family scores highest.
func (f *Family) Choose(schools []*School) (Choice, error) {
	c, err := Choose(f.Priorities, schools)
	if err != nil {
		return Choice{}, fmt.Errorf("family %d: %w", f.ID, err)
	}
	return c, nil
}

// Step runs the family's single activation: choose a school, pay tuition,
// nudge the school's prestige toward its efficacy, and report the
// expectation gap to the population weights.
func (f *Family) Step(schools []*School, cfg *Config, adj WeightAdjuster) (ChoiceOutcome, error) {
	choice, err := f.Choose(schools)
	if err != nil {
		return ChoiceOutcome{}, err
	}
	chosen := choice.School

	chosen.Receive(chosen.Tuition)
	if cfg.DeductTuition {
		f.Wealth -= chosen.Tuition
	}

	gap := chosen.Efficacy - chosen.Prestige
	out := ChoiceOutcome{
		FamilyID:       f.ID,
		SchoolID:       chosen.ID,
		Score:          choice.Score,
		Tuition:        chosen.Tuition,
		Gap:            gap,
		PrestigeBefore: chosen.Prestige,
	}

	// Reputation closes FeedbackRate of the distance to realized quality:
	// it rises after over-performance and falls after under-performance.
	chosen.Prestige += cfg.FeedbackRate * gap
	out.PrestigeAfter = chosen.Prestige

	if adj != nil {
		out.Adjusted = adj.Adjust(f.ID, gap)
	}
	return out, nil
}

// FamilySnapshot is a read-only copy of a family's state.
type FamilySnapshot struct {
	ID         int     `json:"id" yaml:"id"`
	Wealth     float64 `json:"wealth" yaml:"wealth"`
	Priorities Weights `json:"priorities" yaml:"priorities"`
	Location   float64 `json:"location" yaml:"location"`
}

// Snapshot copies the current state.
func (f *Family) Snapshot() FamilySnapshot {
	return FamilySnapshot{ID: f.ID, Wealth: f.Wealth, Priorities: f.Priorities, Location: f.Location}
}
