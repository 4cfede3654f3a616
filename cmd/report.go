package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	sim "github.com/wnowak10/syst/sim"
	"github.com/wnowak10/syst/sim/trace"
)

// runReport is the JSON shape of one run in the printed summary.
type runReport struct {
	Run        int                 `json:"run"`
	Seed       int64               `json:"seed"`
	RunID      string              `json:"run_id,omitempty"`
	Years      int                 `json:"years"`
	Error      string              `json:"error,omitempty"`
	Population sim.Weights         `json:"population_weights"`
	Summary    *trace.TraceSummary `json:"summary,omitempty"`
}

type simulationReport struct {
	Runs             []runReport   `json:"runs"`
	Aggregate        sim.Aggregate `json:"aggregate"`
	SimulationTimeMs int64         `json:"simulation_time_ms"`
}

// PrintResults writes the before/after inspection of every run followed by
// the JSON summary.
func PrintResults(w io.Writer, results []sim.RunResult, startTime time.Time) {
	report := simulationReport{
		Runs:             make([]runReport, 0, len(results)),
		Aggregate:        sim.AggregateResults(results),
		SimulationTimeMs: time.Since(startTime).Milliseconds(),
	}
	for _, res := range results {
		fmt.Fprintf(w, "=== Run %d (seed %d) ===\n", res.Run, res.Seed)
		printInspection(w, "initial", res.Initial)
		printInspection(w, "final", res.Final)
		fmt.Fprintln(w)

		rr := runReport{
			Run:        res.Run,
			Seed:       res.Seed,
			RunID:      res.RunID,
			Years:      res.Years,
			Population: res.Population,
			Summary:    res.Summary,
		}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		}
		report.Runs = append(report.Runs, rr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logrus.Errorf("marshal simulation report: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintln(w, string(data))
}

func printInspection(w io.Writer, label string, schools []sim.SchoolSnapshot) {
	prestige := make([]float64, len(schools))
	endowment := make([]float64, len(schools))
	for i, s := range schools {
		prestige[i] = s.Prestige
		endowment[i] = s.Endowment
	}
	fmt.Fprintf(w, "%-8s prestige   : %.4f\n", label, prestige)
	fmt.Fprintf(w, "%-8s endowments : %.4f\n", label, endowment)
}
