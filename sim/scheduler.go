package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wnowak10/syst/sim/trace"
)

// Phase is the scheduler's position in the yearly cycle:
// Idle → Populating → Activating → Culling → Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePopulating
	PhaseActivating
	PhaseCulling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePopulating:
		return "populating"
	case PhaseActivating:
		return "activating"
	case PhaseCulling:
		return "culling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type entityKind uint8

const (
	kindSchool entityKind = iota
	kindFamily
)

// activation addresses one entity in the school registry or the family arena.
type activation struct {
	kind  entityKind
	index int
}

// Scheduler drives the yearly cycle over two typed registries: the persistent
// school roster and a family arena that is cleared every year. Family ids come
// from a counter that starts past the school ids and never rewinds, while the
// arena's slots are reused.
type Scheduler struct {
	cfg      *Config
	schools  []*School
	families []*Family
	pop      *PopulationWeights
	src      Sources
	trace    *trace.SimulationTrace

	phase        Phase
	nextFamilyID int
	order        []activation
}

func newScheduler(cfg *Config, schools []*School, pop *PopulationWeights, src Sources, st *trace.SimulationTrace) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		schools:      schools,
		families:     make([]*Family, 0, cfg.NumFamilies),
		pop:          pop,
		src:          src,
		trace:        st,
		phase:        PhaseIdle,
		nextFamilyID: len(schools),
		order:        make([]activation, 0, len(schools)+cfg.NumFamilies),
	}
}

// Phase returns the current phase. Idle between years.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// RunYear performs one full cycle. Any entity error aborts the year; the
// arena is still culled so no family outlives it.
func (s *Scheduler) RunYear(year int) error {
	if len(s.schools) == 0 {
		return fmt.Errorf("year %d: %w", year, ErrEmptyRoster)
	}
	defer s.cull()

	if err := s.populate(); err != nil {
		return fmt.Errorf("year %d: populate: %w", year, err)
	}
	if err := s.activate(year); err != nil {
		return fmt.Errorf("year %d: activate: %w", year, err)
	}
	return nil
}

// populate creates NumFamilies fresh families with contiguous ids.
func (s *Scheduler) populate() error {
	s.phase = PhasePopulating
	s.families = s.families[:0]
	for range s.cfg.NumFamilies {
		f, err := SampleFamily(s.nextFamilyID, s.cfg, s.pop, s.src.Families)
		if err != nil {
			return err
		}
		s.nextFamilyID++
		s.families = append(s.families, f)
	}
	return nil
}

// activate steps every school and every family exactly once in a freshly
// shuffled order.
func (s *Scheduler) activate(year int) error {
	s.phase = PhaseActivating

	s.order = s.order[:0]
	for i := range s.schools {
		s.order = append(s.order, activation{kind: kindSchool, index: i})
	}
	for i := range s.families {
		s.order = append(s.order, activation{kind: kindFamily, index: i})
	}
	s.src.Scheduler.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})

	var adj WeightAdjuster = s.pop
	var deferred *deferredAdjuster
	if s.cfg.WeightUpdate == WeightUpdateDeferred {
		deferred = &deferredAdjuster{target: s.pop}
		adj = deferred
	}

	for _, a := range s.order {
		switch a.kind {
		case kindSchool:
			school := s.schools[a.index]
			out := school.Step(s.cfg, s.src.Shocks)
			if out.Shocked {
				logrus.Debugf("[year %03d] school %d scandal: prestige %.4f -> %.4f",
					year, school.ID, out.PrestigeBefore, out.PrestigeAfter)
			}
			s.trace.RecordShock(trace.ShockRecord{
				Year:           year,
				SchoolID:       out.SchoolID,
				Shocked:        out.Shocked,
				PrestigeBefore: out.PrestigeBefore,
				PrestigeAfter:  out.PrestigeAfter,
			})
			if err := school.checkFinite(); err != nil {
				return err
			}
		case kindFamily:
			family := s.families[a.index]
			out, err := family.Step(s.schools, s.cfg, adj)
			if err != nil {
				return err
			}
			logrus.Debugf("[year %03d] family %d chose school %d (score=%.4f gap=%.4f)",
				year, out.FamilyID, out.SchoolID, out.Score, out.Gap)
			s.trace.RecordChoice(trace.ChoiceRecord{
				Year:           year,
				FamilyID:       out.FamilyID,
				SchoolID:       out.SchoolID,
				Score:          out.Score,
				Gap:            out.Gap,
				PrestigeBefore: out.PrestigeBefore,
				PrestigeAfter:  out.PrestigeAfter,
				Adjusted:       out.Adjusted,
			})
		}
	}

	if deferred != nil {
		applied := deferred.flush()
		logrus.Debugf("[year %03d] applied %d deferred weight adjustments", year, applied)
	}
	return nil
}

// cull discards every family created this year. Schools are never removed.
func (s *Scheduler) cull() {
	s.phase = PhaseCulling
	clear(s.families)
	s.families = s.families[:0]
	s.phase = PhaseIdle
}
