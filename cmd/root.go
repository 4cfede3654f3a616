package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/wnowak10/syst/sim"
	"github.com/wnowak10/syst/sim/store"
)

var (
	// CLI flags for the run configuration
	configPath         string  // YAML run configuration
	seed               int64   // Seed of run 0; run i uses seed+i
	numSchools         int     // Schools created once per run
	numFamilies        int     // Families generated every year
	years              int     // Simulated years per run
	runs               int     // Independent repeats
	growthRate         float64 // Yearly endowment growth
	scandalProbability float64 // Yearly scandal probability per school
	weightDelta        float64 // Step of the adaptive weight update
	deductTuition      bool    // Deduct tuition from family wealth
	weightUpdate       string  // sequential or deferred
	prioritySource     string  // independent or population
	continueOnError    bool    // Keep running repeats after a failure
	traceLevel         string  // none or decisions

	// CLI flags for the process
	logLevel string // Log verbosity level
	dbPath   string // Optional SQLite results database
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "schoolsim",
	Short: "Agent-based simulation of a school-choice market",
}

// runCmd executes the simulation using parameters from the config file, the
// environment and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the school-choice simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)
		setupLogging()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := runSimulation(ctx, cfg, dbPath, cmd.OutOrStdout())
		stop()
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective run configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustResolveConfig(cmd)
		setupLogging()
		out, err := MarshalConfig(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Debugf("effective configuration: %d schools, %d runs", cfg.RosterSize(), cfg.Runs)
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	},
}

// runSimulation executes every run, optionally recording into the SQLite
// database at db, and prints the results to w. The database is closed before
// returning.
func runSimulation(ctx context.Context, cfg sim.Config, db string, w io.Writer) error {
	runner := &sim.Runner{Config: cfg}
	if db != "" {
		st, err := store.Open(ctx, db)
		if err != nil {
			return fmt.Errorf("opening results database: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logrus.Warnf("closing results database: %v", cerr)
			}
		}()
		runner.Recorder = st
	}

	logrus.Infof("Starting %d run(s): schools=%d families=%d years=%d seed=%d",
		cfg.Runs, cfg.RosterSize(), cfg.NumFamilies, cfg.Years, cfg.Seed)
	startTime := time.Now()

	results, err := runner.Run(ctx)
	PrintResults(w, results, startTime)
	return err
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func mustResolveConfig(cmd *cobra.Command) sim.Config {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

// resolveConfig layers defaults < YAML file < environment < explicitly set flags.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	overrides, err := parseEnv()
	if err != nil {
		return cfg, err
	}
	overrides.apply(&cfg)
	if overrides.DBPath != nil && !cmd.Flags().Changed("db") {
		dbPath = *overrides.DBPath
	}
	if overrides.LogLevel != nil && !cmd.Flags().Changed("log") {
		logLevel = *overrides.LogLevel
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFlags copies only the flags the user actually set, so file and env
// values survive flag defaults.
func applyFlags(cmd *cobra.Command, cfg *sim.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("schools") {
		cfg.NumSchools = numSchools
	}
	if flags.Changed("families") {
		cfg.NumFamilies = numFamilies
	}
	if flags.Changed("years") {
		cfg.Years = years
	}
	if flags.Changed("runs") {
		cfg.Runs = runs
	}
	if flags.Changed("growth-rate") {
		cfg.GrowthRate = growthRate
	}
	if flags.Changed("scandal-probability") {
		cfg.ScandalProbability = scandalProbability
	}
	if flags.Changed("weight-delta") {
		cfg.WeightDelta = weightDelta
	}
	if flags.Changed("deduct-tuition") {
		cfg.DeductTuition = deductTuition
	}
	if flags.Changed("weight-update") {
		cfg.WeightUpdate = weightUpdate
	}
	if flags.Changed("priority-source") {
		cfg.PrioritySource = prioritySource
	}
	if flags.Changed("continue-on-error") {
		cfg.ContinueOnError = continueOnError
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = traceLevel
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerConfigFlags(c *cobra.Command) {
	defaults := sim.DefaultConfig()
	c.Flags().StringVar(&configPath, "config", "", "YAML run configuration file")
	c.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed of the first run; run i uses seed+i")
	c.Flags().IntVar(&numSchools, "schools", defaults.NumSchools, "Number of schools")
	c.Flags().IntVar(&numFamilies, "families", defaults.NumFamilies, "Number of families generated each year")
	c.Flags().IntVar(&years, "years", defaults.Years, "Number of simulated years per run")
	c.Flags().IntVar(&runs, "runs", defaults.Runs, "Number of independent runs")
	c.Flags().Float64Var(&growthRate, "growth-rate", defaults.GrowthRate, "Yearly endowment growth rate")
	c.Flags().Float64Var(&scandalProbability, "scandal-probability", defaults.ScandalProbability, "Yearly scandal probability per school")
	c.Flags().Float64Var(&weightDelta, "weight-delta", defaults.WeightDelta, "Step of the adaptive population weight update")
	c.Flags().BoolVar(&deductTuition, "deduct-tuition", defaults.DeductTuition, "Deduct tuition from family wealth")
	c.Flags().StringVar(&weightUpdate, "weight-update", defaults.WeightUpdate, "Population weight update (sequential, deferred)")
	c.Flags().StringVar(&prioritySource, "priority-source", defaults.PrioritySource, "Family priority source (independent, population)")
	c.Flags().BoolVar(&continueOnError, "continue-on-error", defaults.ContinueOnError, "Continue with remaining runs after a failed run")
	c.Flags().StringVar(&traceLevel, "trace", defaults.TraceLevel, "Trace level (none, decisions)")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerConfigFlags(runCmd)
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record runs into (optional)")
	registerConfigFlags(configCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}
