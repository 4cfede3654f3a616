package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/wnowak10/syst/sim/trace"
)

// Recorder persists run progress. Implementations must not retain the
// slices inside the records they receive.
type Recorder interface {
	BeginRun(ctx context.Context, run int, seed int64, cfg Config) (string, error)
	RecordYear(ctx context.Context, runID string, rec trace.YearRecord) error
	FinishRun(ctx context.Context, runID string, runErr error) error
}

// RunResult is the outcome of one independent simulation.
type RunResult struct {
	Run        int                 `json:"run"`
	Seed       int64               `json:"seed"`
	RunID      string              `json:"run_id,omitempty"`
	Years      int                 `json:"years"`
	Initial    []SchoolSnapshot    `json:"initial"`
	Final      []SchoolSnapshot    `json:"final"`
	Population Weights             `json:"population"`
	Summary    *trace.TraceSummary `json:"summary"`
	Err        error               `json:"-"`
}

// Runner repeats the whole simulation Config.Runs times. Run i uses seed
// Config.Seed + i, so every run is reproducible on its own.
type Runner struct {
	Config   Config
	Recorder Recorder // optional

	// NewSources builds the random sources for a run; defaults to NewSources.
	NewSources func(SimulationKey) Sources
}

// Run executes every repeat in sequence. A failed run stops the remaining
// repeats unless Config.ContinueOnError is set; the returned error is the
// first failure.
func (r *Runner) Run(ctx context.Context) ([]RunResult, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	newSources := r.NewSources
	if newSources == nil {
		newSources = NewSources
	}

	results := make([]RunResult, 0, r.Config.Runs)
	var firstErr error
	for i := range r.Config.Runs {
		seed := r.Config.Seed + int64(i)
		res := r.runOne(ctx, i, seed, newSources(NewSimulationKey(seed)))
		results = append(results, res)
		if res.Err == nil {
			continue
		}
		logrus.Errorf("run %d (seed %d) failed: %v", i, seed, res.Err)
		if firstErr == nil {
			firstErr = fmt.Errorf("run %d: %w", i, res.Err)
		}
		if !r.Config.ContinueOnError || ctx.Err() != nil {
			break
		}
	}
	return results, firstErr
}

func (r *Runner) runOne(ctx context.Context, run int, seed int64, src Sources) (res RunResult) {
	res = RunResult{Run: run, Seed: seed}
	cfg := r.Config
	cfg.Seed = seed

	if r.Recorder != nil {
		id, err := r.Recorder.BeginRun(ctx, run, seed, cfg)
		if err != nil {
			res.Err = fmt.Errorf("begin run: %w", err)
			return res
		}
		res.RunID = id
		defer func() {
			// a cancelled run must still be marked failed
			finishCtx := context.WithoutCancel(ctx)
			if err := r.Recorder.FinishRun(finishCtx, res.RunID, res.Err); err != nil && res.Err == nil {
				res.Err = fmt.Errorf("finish run: %w", err)
			}
		}()
	}

	m, err := NewModel(cfg, src)
	if err != nil {
		res.Err = err
		return res
	}
	logrus.Infof("run %d: seed=%d schools=%d families/year=%d years=%d",
		run, seed, len(m.schools), cfg.NumFamilies, cfg.Years)
	res.Initial = m.Schools()

	for range cfg.Years {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		if err := m.Step(); err != nil {
			res.Err = err
			break
		}
		if r.Recorder != nil {
			rec, _ := m.Trace.LastYear()
			if err := r.Recorder.RecordYear(ctx, res.RunID, rec); err != nil {
				res.Err = fmt.Errorf("record year %d: %w", rec.Year, err)
				break
			}
		}
	}

	res.Years = m.Year()
	res.Final = m.Schools()
	res.Population = m.Population()
	res.Summary = trace.Summarize(m.Trace)
	return res
}

// Aggregate summarizes final school state across runs.
type Aggregate struct {
	Runs               int     `json:"runs"`
	Failed             int     `json:"failed"`
	MeanPrestige       float64 `json:"mean_prestige"`
	StdPrestige        float64 `json:"std_prestige"`
	MeanEndowment      float64 `json:"mean_endowment"`
	StdEndowment       float64 `json:"std_endowment"`
	MeanPrestigeWeight float64 `json:"mean_prestige_weight"`
	MeanEfficacyWeight float64 `json:"mean_efficacy_weight"`
	MeanCostWeight     float64 `json:"mean_cost_weight"`
}

// AggregateResults pools the final schools of every successful run.
// Standard deviations are zero when fewer than two values exist.
func AggregateResults(results []RunResult) Aggregate {
	agg := Aggregate{Runs: len(results)}
	var prestige, endowment, wp, we, wc []float64
	for _, res := range results {
		if res.Err != nil {
			agg.Failed++
			continue
		}
		for _, s := range res.Final {
			prestige = append(prestige, s.Prestige)
			endowment = append(endowment, s.Endowment)
		}
		wp = append(wp, res.Population.Prestige)
		we = append(we, res.Population.Efficacy)
		wc = append(wc, res.Population.Cost)
	}
	agg.MeanPrestige, agg.StdPrestige = meanStd(prestige)
	agg.MeanEndowment, agg.StdEndowment = meanStd(endowment)
	agg.MeanPrestigeWeight, _ = meanStd(wp)
	agg.MeanEfficacyWeight, _ = meanStd(we)
	agg.MeanCostWeight, _ = meanStd(wc)
	return agg
}

func meanStd(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
