package sim

import (
	"fmt"
	"math"
)

// maxIntegerWeight is the inclusive upper bound of the integer draw used to
// build a random priority distribution.
const maxIntegerWeight = 100

// weightTolerance absorbs floating-point error when checking sums.
const weightTolerance = 1e-9

// Weights is a family's priority distribution over Prestige, Efficacy and Cost.
// Each component is in [0,1]. Freshly generated weights sum to 1.
type Weights struct {
	Prestige float64 `yaml:"prestige" json:"prestige"`
	Efficacy float64 `yaml:"efficacy" json:"efficacy"`
	Cost     float64 `yaml:"cost" json:"cost"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Prestige + w.Efficacy + w.Cost
}

// InUnitRange reports whether every component lies in [0,1].
func (w Weights) InUnitRange() bool {
	for _, v := range []float64{w.Prestige, w.Efficacy, w.Cost} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Normalized rescales w to sum to 1. Returns false when the sum is not positive.
func (w Weights) Normalized() (Weights, bool) {
	total := w.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return w, false
	}
	return Weights{Prestige: w.Prestige / total, Efficacy: w.Efficacy / total, Cost: w.Cost / total}, true
}

func (w Weights) String() string {
	return fmt.Sprintf("{Prestige:%.4f Efficacy:%.4f Cost:%.4f}", w.Prestige, w.Efficacy, w.Cost)
}

// SchoolPriorities is a school's internal weighting over Equity, Prestige and
// Efficacy. Carried for extensibility; only Equity and Efficacy feed the
// endowment draw.
type SchoolPriorities struct {
	Equity   float64 `yaml:"equity" json:"equity"`
	Prestige float64 `yaml:"prestige" json:"prestige"`
	Efficacy float64 `yaml:"efficacy" json:"efficacy"`
}

// SampleWeights draws a random family priority distribution.
func SampleWeights(src RandomSource) Weights {
	p := sampleSimplex(src, 3)
	return Weights{Prestige: p[0], Efficacy: p[1], Cost: p[2]}
}

// SampleSchoolPriorities draws a random school priority distribution.
func SampleSchoolPriorities(src RandomSource) SchoolPriorities {
	p := sampleSimplex(src, 3)
	return SchoolPriorities{Equity: p[0], Prestige: p[1], Efficacy: p[2]}
}

// sampleSimplex draws n integers uniformly from [0, maxIntegerWeight] and
// normalizes them. An all-zero draw is redrawn.
func sampleSimplex(src RandomSource, n int) []float64 {
	draws := make([]float64, n)
	for {
		total := 0.0
		for i := range draws {
			draws[i] = float64(src.IntN(maxIntegerWeight + 1))
			total += draws[i]
		}
		if total == 0 {
			continue
		}
		for i := range draws {
			draws[i] /= total
		}
		return draws
	}
}
