package sim

import (
	"fmt"
	"math"
)

// School is a persistent market participant. Exactly one School exists per ID
// for the whole run.
//
// AnnualFund, EndowmentDraw, Priorities and Location are descriptive: the
// yearly update reads none of them. EndowmentDraw in particular is not
// subtracted from the endowment.
type School struct {
	ID            int
	Endowment     float64
	Prestige      float64
	Tuition       float64 // fixed at creation
	Efficacy      float64 // fixed at creation; shocks never touch it
	AnnualFund    float64
	EndowmentDraw float64
	Priorities    SchoolPriorities
	Location      float64
}

// ShockOutcome describes one school's yearly scandal draw.
type ShockOutcome struct {
	SchoolID       int
	Shocked        bool
	PrestigeBefore float64
	PrestigeAfter  float64
}

// NewSchool builds a school from explicit attributes.
func NewSchool(id int, spec SchoolSpec, sampling SamplingConfig) (*School, error) {
	tuition := spec.Prestige * sampling.TuitionRatio
	if spec.Tuition != nil {
		tuition = *spec.Tuition
	}
	var priorities SchoolPriorities
	if spec.Priorities != nil {
		priorities = *spec.Priorities
	}
	s := &School{
		ID:            id,
		Endowment:     spec.Endowment,
		Prestige:      spec.Prestige,
		Tuition:       tuition,
		Efficacy:      spec.Efficacy,
		AnnualFund:    spec.AnnualFund,
		EndowmentDraw: endowmentDraw(priorities, sampling.MaxEndowmentDraw),
		Priorities:    priorities,
		Location:      spec.Location,
	}
	if err := s.checkInitial(); err != nil {
		return nil, err
	}
	return s, nil
}

// SampleSchool draws a school: endowment ~ Exp(1), prestige and efficacy
// ~ |N(0,1)|, tuition proportional to prestige, location ~ N(0, stddev).
func SampleSchool(id int, sampling SamplingConfig, src RandomSource) (*School, error) {
	endowment := src.Exponential()
	prestige := halfNormal(src)
	annualFund := float64(src.IntN(sampling.AnnualFundMax + 1))
	efficacy := halfNormal(src)
	priorities := SampleSchoolPriorities(src)
	location := src.Normal(0, sampling.LocationStdDev)

	return NewSchool(id, SchoolSpec{
		Endowment:  endowment,
		Prestige:   prestige,
		Efficacy:   efficacy,
		AnnualFund: annualFund,
		Location:   location,
		Priorities: &priorities,
	}, sampling)
}

// endowmentDraw is zero for a school that cares only about prestige and
// maxDraw for one that cares only about equity and efficacy.
func endowmentDraw(p SchoolPriorities, maxDraw float64) float64 {
	return maxDraw * (p.Equity + p.Efficacy)
}

// Step applies one year of evolution: deterministic endowment growth, then a
// single weighted draw over {no shock, shock}.
func (s *School) Step(cfg *Config, src RandomSource) ShockOutcome {
	s.Endowment *= 1 + cfg.GrowthRate

	out := ShockOutcome{SchoolID: s.ID, PrestigeBefore: s.Prestige}
	if src.Categorical([]float64{1 - cfg.ScandalProbability, cfg.ScandalProbability}) == 1 {
		s.Prestige *= cfg.ScandalFactor
		out.Shocked = true
	}
	out.PrestigeAfter = s.Prestige
	return out
}

// Receive books a tuition payment.
func (s *School) Receive(amount float64) {
	s.Endowment += amount
}

// checkInitial rejects attributes that would make scoring meaningless.
func (s *School) checkInitial() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"endowment", s.Endowment},
		{"prestige", s.Prestige},
		{"efficacy", s.Efficacy},
		{"tuition", s.Tuition},
	} {
		if !isFinite(f.v) || f.v < 0 {
			return fmt.Errorf("school %d %s = %v: %w", s.ID, f.name, f.v, ErrNumericDomain)
		}
	}
	if !isFinite(s.Location) {
		return fmt.Errorf("school %d location = %v: %w", s.ID, s.Location, ErrNumericDomain)
	}
	return nil
}

// checkFinite guards the fields the yearly update mutates.
func (s *School) checkFinite() error {
	if math.IsNaN(s.Prestige) || math.IsInf(s.Prestige, 0) {
		return fmt.Errorf("school %d prestige = %v: %w", s.ID, s.Prestige, ErrNumericDomain)
	}
	if math.IsNaN(s.Endowment) || math.IsInf(s.Endowment, 0) {
		return fmt.Errorf("school %d endowment = %v: %w", s.ID, s.Endowment, ErrNumericDomain)
	}
	return nil
}

// SchoolSnapshot is a read-only copy of a school's state.
type SchoolSnapshot struct {
	ID            int              `json:"id" yaml:"id"`
	Endowment     float64          `json:"endowment" yaml:"endowment"`
	Prestige      float64          `json:"prestige" yaml:"prestige"`
	Tuition       float64          `json:"tuition" yaml:"tuition"`
	Efficacy      float64          `json:"efficacy" yaml:"efficacy"`
	AnnualFund    float64          `json:"annual_fund" yaml:"annual_fund"`
	EndowmentDraw float64          `json:"endowment_draw" yaml:"endowment_draw"`
	Priorities    SchoolPriorities `json:"priorities" yaml:"priorities"`
	Location      float64          `json:"location" yaml:"location"`
}

// Snapshot copies the current state.
func (s *School) Snapshot() SchoolSnapshot {
	return SchoolSnapshot{
		ID:            s.ID,
		Endowment:     s.Endowment,
		Prestige:      s.Prestige,
		Tuition:       s.Tuition,
		Efficacy:      s.Efficacy,
		AnnualFund:    s.AnnualFund,
		EndowmentDraw: s.EndowmentDraw,
		Priorities:    s.Priorities,
		Location:      s.Location,
	}
}
