// Package sim provides the discrete-time simulation engine for a school-choice
// market.
//
// # Reading Guide
//
// Start with these files to understand the yearly cycle:
//   - school.go, family.go: the two entity kinds and their step rules
//   - scoring.go: the utility function and the argmax choice policy
//   - population.go: the shared adaptive weights and their single update path
//   - scheduler.go: Populating → Activating → Culling, once per year
//   - model.go: one run; runner.go: repeated independent runs
//
// # Determinism
//
// All randomness flows through RandomSource. NewSources derives one isolated
// stream per concern (school roster, families, shocks, activation order) from
// a SimulationKey, so a given seed and Config reproduce a run bit for bit.
// With the default sequential weight update each family's adjustment lands
// the moment it activates, so later families in the same year see it. The
// deferred mode holds the year's adjustments and applies them in family-id
// order after the last activation.
//
// # Sub-packages
//   - sim/trace/: choice, shock and year records, and their summary
//   - sim/store/: SQLite persistence of runs and year records
package sim
