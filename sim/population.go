package sim

import (
	"fmt"
	"sort"
)

// WeightAdjuster receives the expectation gap a family observed.
type WeightAdjuster interface {
	// Adjust feeds one gap into the population weights. familyID orders
	// deferred application; immediate adjusters ignore it.
	Adjust(familyID int, gap float64) bool
}

// PopulationWeights is the shared market sentiment read when families are
// generated and mutated by their feedback. It is owned by the Model and only
// changes through Adjust, which keeps every component in [0,1] and every
// move zero-sum.
type PopulationWeights struct {
	w     Weights
	delta float64
}

// NewPopulationWeights validates initial and returns the adaptive state.
func NewPopulationWeights(initial Weights, delta float64) (*PopulationWeights, error) {
	if !initial.InUnitRange() {
		return nil, configErrorf("population weights must be in [0,1], got %s", initial)
	}
	if !isFinite(delta) || delta <= 0 || delta > 0.5 {
		return nil, configErrorf("weight delta must be in (0, 0.5], got %v", delta)
	}
	return &PopulationWeights{w: initial, delta: delta}, nil
}

// Weights returns a copy of the current weights.
func (p *PopulationWeights) Weights() Weights {
	return p.w
}

// Adjust shifts weight out of Prestige according to the sign of gap.
//
// gap >= 0: delta moves from Prestige into Efficacy, provided Prestige > delta
// and Efficacy can absorb delta without passing 1.
//
// gap < 0: 2*delta leaves Prestige, split evenly into Efficacy and Cost,
// provided Prestige > 2*delta and neither receiver would pass 1.
//
// Once a guard fails the move is skipped; a saturated dimension stays
// saturated for the rest of the run. Reports whether weights changed.
func (p *PopulationWeights) Adjust(_ int, gap float64) bool {
	d := p.delta
	if gap >= 0 {
		if p.w.Prestige > d && p.w.Efficacy != 1 && p.w.Efficacy+d <= 1 {
			p.w.Prestige -= d
			p.w.Efficacy += d
			return true
		}
		return false
	}
	if p.w.Prestige > 2*d && p.w.Efficacy != 1 && p.w.Cost != 1 &&
		p.w.Efficacy+d <= 1 && p.w.Cost+d <= 1 {
		p.w.Prestige -= 2 * d
		p.w.Efficacy += d
		p.w.Cost += d
		return true
	}
	return false
}

func (p *PopulationWeights) String() string {
	return fmt.Sprintf("population%s", p.w)
}

// deferredAdjuster records gaps during a year and replays them through the
// target in ascending family-id order, so the result does not depend on
// activation order.
type deferredAdjuster struct {
	target  *PopulationWeights
	pending []pendingGap
}

type pendingGap struct {
	familyID int
	gap      float64
}

func (d *deferredAdjuster) Adjust(familyID int, gap float64) bool {
	d.pending = append(d.pending, pendingGap{familyID: familyID, gap: gap})
	return false
}

// flush applies the pending gaps and returns how many changed the weights.
func (d *deferredAdjuster) flush() int {
	sort.Slice(d.pending, func(i, j int) bool { return d.pending[i].familyID < d.pending[j].familyID })
	applied := 0
	for _, pg := range d.pending {
		if d.target.Adjust(pg.familyID, pg.gap) {
			applied++
		}
	}
	d.pending = d.pending[:0]
	return applied
}
