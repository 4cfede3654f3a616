package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/wnowak10/syst/sim"
)

func TestPrintResults_InspectionAndMetrics(t *testing.T) {
	// GIVEN two completed runs
	cfg := sim.DefaultConfig()
	cfg.Runs = 2
	results, err := (&sim.Runner{Config: cfg}).Run(context.Background())
	require.NoError(t, err)

	// WHEN they are printed
	var buf bytes.Buffer
	PrintResults(&buf, results, time.Now())
	out := buf.String()

	// THEN each run shows its before/after state
	assert.Contains(t, out, "=== Run 0 (seed 42) ===")
	assert.Contains(t, out, "=== Run 1 (seed 43) ===")
	assert.Contains(t, out, "initial  prestige   : [")
	assert.Contains(t, out, "final    endowments : [")

	// AND the metrics block is valid JSON
	_, metrics, found := strings.Cut(out, "=== Simulation Metrics ===\n")
	require.True(t, found)
	var report simulationReport
	require.NoError(t, json.Unmarshal([]byte(metrics), &report))
	require.Len(t, report.Runs, 2)
	assert.Equal(t, 2, report.Aggregate.Runs)
	assert.Zero(t, report.Aggregate.Failed)
	assert.Equal(t, cfg.Years, report.Runs[1].Years)
	assert.Equal(t, results[1].Population, report.Runs[1].Population)
}

func TestPrintResults_FailedRun(t *testing.T) {
	results := []sim.RunResult{{Run: 0, Seed: 1, Err: errors.New("school 0 prestige = NaN")}}

	var buf bytes.Buffer
	PrintResults(&buf, results, time.Now())

	assert.Contains(t, buf.String(), `"error": "school 0 prestige = NaN"`)
	assert.Contains(t, buf.String(), `"failed": 1`)
}
