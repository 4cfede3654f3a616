package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// SimulationKey seeds one run. A key and a Config fully determine the run's
// output.
type SimulationKey int64

// NewSimulationKey wraps a seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Stream names, one per concern that consumes randomness.
const (
	SubsystemSchools   = "schools"   // initial roster attributes
	SubsystemFamilies  = "families"  // yearly family wealth, priorities, location
	SubsystemShocks    = "shocks"    // yearly scandal draws
	SubsystemScheduler = "scheduler" // yearly activation order
)

// PartitionedRNG hands out one *rand.Rand per named stream. Each stream is
// seeded with PCG(key, fnv1a64(name)), so adding draws to one concern never
// shifts another concern's sequence. Not safe for concurrent use.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG returns an empty partition for key; streams are created
// on first use.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, subsystems: map[string]*rand.Rand{}}
}

// ForSubsystem returns the stream for name, creating it on first request.
// Repeated calls return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	r, ok := p.subsystems[name]
	if !ok {
		r = rand.New(rand.NewPCG(uint64(p.key), fnv1a64(name)))
		p.subsystems[name] = r
	}
	return r
}

// Key returns the partition's seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
