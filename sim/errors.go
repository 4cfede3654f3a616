package sim

import "errors"

// Every error returned by the engine wraps one of these. All of them are fatal
// to the run that produced them.
var (
	// ErrConfiguration reports a non-positive population size or an
	// out-of-range rate, probability, or weight. Detected at construction.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmptyRoster reports a choice attempted with no schools. Schools are
	// created before any family, so this indicates a construction-order bug.
	ErrEmptyRoster = errors.New("empty school roster")

	// ErrNumericDomain reports a school or family attribute that is negative
	// where it must not be, or NaN/Inf.
	ErrNumericDomain = errors.New("value outside numeric domain")
)
