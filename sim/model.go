package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wnowak10/syst/sim/trace"
)

// Model is one independent simulation: it owns the school roster for the
// whole run, the adaptive population weights, and the scheduler that drives
// each year.
type Model struct {
	cfg       Config
	schools   []*School
	pop       *PopulationWeights
	scheduler *Scheduler
	year      int

	// Trace holds year records, plus choices and shocks at decision level.
	Trace *trace.SimulationTrace
}

// NewModel validates cfg and creates the school roster, either from
// cfg.Schools or by sampling cfg.NumSchools schools from src.Schools.
// School ids are 0..n-1 in roster order.
func NewModel(cfg Config, src Sources) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !src.complete() {
		return nil, configErrorf("every random source must be set")
	}
	pop, err := NewPopulationWeights(cfg.InitialWeights, cfg.WeightDelta)
	if err != nil {
		return nil, err
	}

	n := cfg.RosterSize()
	schools := make([]*School, 0, n)
	for i := range n {
		var s *School
		if len(cfg.Schools) > 0 {
			s, err = NewSchool(i, cfg.Schools[i], cfg.Sampling)
		} else {
			s, err = SampleSchool(i, cfg.Sampling, src.Schools)
		}
		if err != nil {
			return nil, fmt.Errorf("creating school %d: %w", i, err)
		}
		schools = append(schools, s)
	}

	level := trace.TraceLevel(cfg.TraceLevel)
	if level == "" {
		level = trace.TraceLevelNone
	}
	m := &Model{
		cfg:     cfg,
		schools: schools,
		pop:     pop,
		Trace:   trace.NewSimulationTrace(trace.TraceConfig{Level: level}),
	}
	// the scheduler shares the model's config copy, roster, and weights
	m.scheduler = newScheduler(&m.cfg, m.schools, m.pop, src, m.Trace)
	return m, nil
}

// Step simulates one year.
func (m *Model) Step() error {
	if err := m.scheduler.RunYear(m.year); err != nil {
		return err
	}
	rec := m.yearRecord()
	m.Trace.RecordYear(rec)
	logrus.Infof("[year %03d] complete: weights=%s", m.year, m.pop.Weights())
	m.year++
	return nil
}

// Run simulates years consecutive years, stopping at the first error.
func (m *Model) Run(years int) error {
	for range years {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Year returns the number of completed years.
func (m *Model) Year() int {
	return m.year
}

// Phase returns the scheduler phase; Idle whenever no year is in progress.
func (m *Model) Phase() Phase {
	return m.scheduler.Phase()
}

// Config returns the validated configuration.
func (m *Model) Config() Config {
	return m.cfg
}

// Schools returns a snapshot of every school in id order.
func (m *Model) Schools() []SchoolSnapshot {
	out := make([]SchoolSnapshot, len(m.schools))
	for i, s := range m.schools {
		out[i] = s.Snapshot()
	}
	return out
}

// Families returns a snapshot of the currently active families. Outside a
// running year the arena has been culled, so this is empty.
func (m *Model) Families() []FamilySnapshot {
	out := make([]FamilySnapshot, len(m.scheduler.families))
	for i, f := range m.scheduler.families {
		out[i] = f.Snapshot()
	}
	return out
}

// Population returns the current adaptive weights.
func (m *Model) Population() Weights {
	return m.pop.Weights()
}

func (m *Model) yearRecord() trace.YearRecord {
	states := make([]trace.SchoolState, len(m.schools))
	for i, s := range m.schools {
		states[i] = trace.SchoolState{ID: s.ID, Endowment: s.Endowment, Prestige: s.Prestige}
	}
	w := m.pop.Weights()
	return trace.YearRecord{
		Year:     m.year,
		Families: m.cfg.NumFamilies,
		Schools:  states,
		Weights:  trace.WeightState{Prestige: w.Prestige, Efficacy: w.Efficacy, Cost: w.Cost},
	}
}
