// Package trace provides decision-trace recording for simulation analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// ChoiceRecord captures a single family's school choice and its feedback.
type ChoiceRecord struct {
	Year           int
	FamilyID       int
	SchoolID       int
	Score          float64
	Gap            float64 // efficacy - prestige before feedback
	PrestigeBefore float64
	PrestigeAfter  float64
	Adjusted       bool // population weights moved
}

// ShockRecord captures one school's yearly scandal draw, shocked or not.
type ShockRecord struct {
	Year           int
	SchoolID       int
	Shocked        bool
	PrestigeBefore float64
	PrestigeAfter  float64
}

// SchoolState is a school's mutable state at a year boundary.
type SchoolState struct {
	ID        int     `json:"id"`
	Endowment float64 `json:"endowment"`
	Prestige  float64 `json:"prestige"`
}

// WeightState is the population priority distribution at a year boundary.
type WeightState struct {
	Prestige float64 `json:"prestige"`
	Efficacy float64 `json:"efficacy"`
	Cost     float64 `json:"cost"`
}

// YearRecord captures the market after a completed year.
type YearRecord struct {
	Year     int           `json:"year"`
	Families int           `json:"families"` // families activated this year
	Schools  []SchoolState `json:"schools"`
	Weights  WeightState   `json:"weights"`
}
