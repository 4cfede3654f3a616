package sim

import (
	"fmt"
	"math"

	"github.com/wnowak10/syst/sim/trace"
)

// Adaptive weight update modes.
const (
	// WeightUpdateSequential applies each family's adjustment the moment it
	// activates, so the year's final weights depend on activation order.
	WeightUpdateSequential = "sequential"
	// WeightUpdateDeferred collects every family's gap and applies them at the
	// end of the year in ascending family-id order.
	WeightUpdateDeferred = "deferred"
)

// Family priority sources.
const (
	// PrioritySourceIndependent draws each family's weights on its own.
	PrioritySourceIndependent = "independent"
	// PrioritySourcePopulation copies the current population weights, normalized.
	PrioritySourcePopulation = "population"
)

var validWeightUpdates = map[string]bool{"": true, WeightUpdateSequential: true, WeightUpdateDeferred: true}

var validPrioritySources = map[string]bool{"": true, PrioritySourceIndependent: true, PrioritySourcePopulation: true}

// SamplingConfig parameterizes the generators used when schools and families
// are drawn rather than listed explicitly.
type SamplingConfig struct {
	TuitionRatio     float64 `yaml:"tuition_ratio" json:"tuition_ratio"`           // tuition = prestige * ratio
	MaxEndowmentDraw float64 `yaml:"max_endowment_draw" json:"max_endowment_draw"` // draw for an equity+efficacy-only school
	AnnualFundMax    int     `yaml:"annual_fund_max" json:"annual_fund_max"`       // annual fund ~ U{0..max}
	WealthFloor      float64 `yaml:"wealth_floor" json:"wealth_floor"`             // wealth = floor + scale*Exp(1)
	WealthScale      float64 `yaml:"wealth_scale" json:"wealth_scale"`
	LocationStdDev   float64 `yaml:"location_stddev" json:"location_stddev"` // location ~ N(0, stddev)
}

// SchoolSpec lists a school with fixed attributes. Tuition defaults to
// prestige * TuitionRatio when omitted.
type SchoolSpec struct {
	Endowment  float64           `yaml:"endowment" json:"endowment"`
	Prestige   float64           `yaml:"prestige" json:"prestige"`
	Efficacy   float64           `yaml:"efficacy" json:"efficacy"`
	Tuition    *float64          `yaml:"tuition,omitempty" json:"tuition,omitempty"`
	AnnualFund float64           `yaml:"annual_fund,omitempty" json:"annual_fund,omitempty"`
	Location   float64           `yaml:"location,omitempty" json:"location,omitempty"`
	Priorities *SchoolPriorities `yaml:"priorities,omitempty" json:"priorities,omitempty"`
}

// Config holds every scalar the simulation consumes at construction time.
type Config struct {
	Seed        int64 `yaml:"seed" json:"seed"`
	NumSchools  int   `yaml:"num_schools" json:"num_schools"`
	NumFamilies int   `yaml:"num_families" json:"num_families"`
	Years       int   `yaml:"years" json:"years"`
	Runs        int   `yaml:"runs" json:"runs"`

	GrowthRate         float64 `yaml:"growth_rate" json:"growth_rate"`
	ScandalProbability float64 `yaml:"scandal_probability" json:"scandal_probability"`
	ScandalFactor      float64 `yaml:"scandal_factor" json:"scandal_factor"` // prestige multiplier on a scandal
	FeedbackRate       float64 `yaml:"feedback_rate" json:"feedback_rate"`   // share of the gap closed per choice
	WeightDelta        float64 `yaml:"weight_delta" json:"weight_delta"`
	InitialWeights     Weights `yaml:"initial_weights" json:"initial_weights"`

	DeductTuition   bool   `yaml:"deduct_tuition" json:"deduct_tuition"`
	WeightUpdate    string `yaml:"weight_update" json:"weight_update"`
	PrioritySource  string `yaml:"priority_source" json:"priority_source"`
	ContinueOnError bool   `yaml:"continue_on_error" json:"continue_on_error"`
	TraceLevel      string `yaml:"trace_level" json:"trace_level"`

	Sampling SamplingConfig `yaml:"sampling" json:"sampling"`
	// Schools, when non-empty, replaces the sampled roster.
	Schools []SchoolSpec `yaml:"schools,omitempty" json:"schools,omitempty"`
}

// DefaultConfig returns the reference parameterization.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		NumSchools:         3,
		NumFamilies:        5,
		Years:              5,
		Runs:               1,
		GrowthRate:         0.04,
		ScandalProbability: 0.03,
		ScandalFactor:      0.75,
		FeedbackRate:       0.5,
		WeightDelta:        0.01,
		InitialWeights:     Weights{Prestige: 0.3, Efficacy: 0.3, Cost: 0.3},
		WeightUpdate:       WeightUpdateSequential,
		PrioritySource:     PrioritySourceIndependent,
		TraceLevel:         "none",
		Sampling: SamplingConfig{
			TuitionRatio:     0.5,
			MaxEndowmentDraw: 0.1,
			AnnualFundMax:    100,
			WealthFloor:      50,
			WealthScale:      200,
			LocationStdDev:   100,
		},
	}
}

// RosterSize returns the number of schools the run will create.
func (c *Config) RosterSize() int {
	if len(c.Schools) > 0 {
		return len(c.Schools)
	}
	return c.NumSchools
}

// Validate checks population sizes and the range of every rate and weight.
// Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if len(c.Schools) > 0 && c.NumSchools != 0 && c.NumSchools != len(c.Schools) {
		return configErrorf("num_schools is %d but %d schools are listed", c.NumSchools, len(c.Schools))
	}
	if c.RosterSize() <= 0 {
		return configErrorf("num_schools must be positive, got %d", c.NumSchools)
	}
	if c.NumFamilies <= 0 {
		return configErrorf("num_families must be positive, got %d", c.NumFamilies)
	}
	if c.Years <= 0 {
		return configErrorf("years must be positive, got %d", c.Years)
	}
	if c.Runs <= 0 {
		return configErrorf("runs must be positive, got %d", c.Runs)
	}
	if !isFinite(c.GrowthRate) || c.GrowthRate <= -1 {
		return configErrorf("growth_rate must be finite and greater than -1, got %v", c.GrowthRate)
	}
	if err := validateUnit("scandal_probability", c.ScandalProbability); err != nil {
		return err
	}
	if err := validateUnit("scandal_factor", c.ScandalFactor); err != nil {
		return err
	}
	if err := validateUnit("feedback_rate", c.FeedbackRate); err != nil {
		return err
	}
	if !isFinite(c.WeightDelta) || c.WeightDelta <= 0 || c.WeightDelta > 0.5 {
		return configErrorf("weight_delta must be in (0, 0.5], got %v", c.WeightDelta)
	}
	if !c.InitialWeights.InUnitRange() {
		return configErrorf("initial_weights components must be in [0,1], got %s", c.InitialWeights)
	}
	if c.InitialWeights.Sum() > 1+weightTolerance {
		return configErrorf("initial_weights must not sum above 1, got %v", c.InitialWeights.Sum())
	}
	if !validWeightUpdates[c.WeightUpdate] {
		return configErrorf("unknown weight_update %q; valid: sequential, deferred", c.WeightUpdate)
	}
	if !validPrioritySources[c.PrioritySource] {
		return configErrorf("unknown priority_source %q; valid: independent, population", c.PrioritySource)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return configErrorf("unknown trace_level %q; valid: none, decisions", c.TraceLevel)
	}
	return c.Sampling.validate()
}

func (s SamplingConfig) validate() error {
	if !isFinite(s.TuitionRatio) || s.TuitionRatio < 0 {
		return configErrorf("sampling.tuition_ratio must be non-negative, got %v", s.TuitionRatio)
	}
	if !isFinite(s.MaxEndowmentDraw) || s.MaxEndowmentDraw < 0 {
		return configErrorf("sampling.max_endowment_draw must be non-negative, got %v", s.MaxEndowmentDraw)
	}
	if s.AnnualFundMax < 0 {
		return configErrorf("sampling.annual_fund_max must be non-negative, got %d", s.AnnualFundMax)
	}
	if !isFinite(s.WealthFloor) || !isFinite(s.WealthScale) || s.WealthScale < 0 {
		return configErrorf("sampling.wealth_floor and wealth_scale must be finite, scale non-negative")
	}
	if !isFinite(s.LocationStdDev) || s.LocationStdDev < 0 {
		return configErrorf("sampling.location_stddev must be non-negative, got %v", s.LocationStdDev)
	}
	return nil
}

func validateUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return configErrorf("%s must be in [0,1], got %v", name, v)
	}
	return nil
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
