package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone records only year boundaries.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions additionally captures every choice and shock draw.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects records during one simulation run.
type SimulationTrace struct {
	Config  TraceConfig
	Choices []ChoiceRecord
	Shocks  []ShockRecord
	Years   []YearRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		Choices: make([]ChoiceRecord, 0),
		Shocks:  make([]ShockRecord, 0),
		Years:   make([]YearRecord, 0),
	}
}

// Decisions reports whether per-decision records are kept.
func (st *SimulationTrace) Decisions() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordChoice appends a choice record when decisions are traced.
func (st *SimulationTrace) RecordChoice(record ChoiceRecord) {
	if st.Decisions() {
		st.Choices = append(st.Choices, record)
	}
}

// RecordShock appends a shock record when decisions are traced.
func (st *SimulationTrace) RecordShock(record ShockRecord) {
	if st.Decisions() {
		st.Shocks = append(st.Shocks, record)
	}
}

// RecordYear appends a year record. Years are recorded at every level.
func (st *SimulationTrace) RecordYear(record YearRecord) {
	if st == nil {
		return
	}
	st.Years = append(st.Years, record)
}

// LastYear returns the most recent year record.
func (st *SimulationTrace) LastYear() (YearRecord, bool) {
	if st == nil || len(st.Years) == 0 {
		return YearRecord{}, false
	}
	return st.Years[len(st.Years)-1], true
}
