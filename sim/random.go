package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// RandomSource supplies the draw shapes the engine consumes. The engine never
// depends on a concrete generator; tests substitute scripted sources.
type RandomSource interface {
	// Exponential returns a draw from Exp(1).
	Exponential() float64
	// Normal returns a draw from N(mu, sigma).
	Normal(mu, sigma float64) float64
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Categorical returns the index of the outcome drawn with the given
	// non-negative weights.
	Categorical(weights []float64) int
	// Shuffle permutes n elements uniformly using swap.
	Shuffle(n int, swap func(i, j int))
}

// DistSource is the production RandomSource, backed by gonum distributions
// reading from a single *rand.Rand stream.
type DistSource struct {
	rng *rand.Rand
}

// NewDistSource wraps rng. All draws advance rng.
func NewDistSource(rng *rand.Rand) *DistSource {
	return &DistSource{rng: rng}
}

// Exponential draws from Exp(1).
func (d *DistSource) Exponential() float64 {
	return distuv.Exponential{Rate: 1, Src: d.rng}.Rand()
}

// Normal draws from N(mu, sigma).
func (d *DistSource) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: d.rng}.Rand()
}

// IntN draws uniformly from [0, n).
func (d *DistSource) IntN(n int) int {
	return d.rng.IntN(n)
}

// Categorical draws an index with probability proportional to its weight.
func (d *DistSource) Categorical(weights []float64) int {
	return int(distuv.NewCategorical(weights, d.rng).Rand())
}

// Shuffle permutes n elements uniformly.
func (d *DistSource) Shuffle(n int, swap func(i, j int)) {
	d.rng.Shuffle(n, swap)
}

// halfNormal draws |N(0, 1)|.
func halfNormal(src RandomSource) float64 {
	return math.Abs(src.Normal(0, 1))
}

// Sources routes each engine concern to its own RandomSource.
type Sources struct {
	Schools   RandomSource
	Families  RandomSource
	Shocks    RandomSource
	Scheduler RandomSource
}

// NewSources derives one isolated stream per concern from key.
func NewSources(key SimulationKey) Sources {
	rng := NewPartitionedRNG(key)
	return Sources{
		Schools:   NewDistSource(rng.ForSubsystem(SubsystemSchools)),
		Families:  NewDistSource(rng.ForSubsystem(SubsystemFamilies)),
		Shocks:    NewDistSource(rng.ForSubsystem(SubsystemShocks)),
		Scheduler: NewDistSource(rng.ForSubsystem(SubsystemScheduler)),
	}
}

// SingleSource routes every concern to src, consuming one shared stream in
// call order.
func SingleSource(src RandomSource) Sources {
	return Sources{Schools: src, Families: src, Shocks: src, Scheduler: src}
}

func (s Sources) complete() bool {
	return s.Schools != nil && s.Families != nil && s.Shocks != nil && s.Scheduler != nil
}
