package testutil

// ScriptedSource is a RandomSource that replays fixed values. Each draw shape
// has its own queue; an exhausted queue falls back to a fixed default so
// tests only script what they assert on.
type ScriptedSource struct {
	Exponentials []float64
	Normals      []float64 // standard normal values, scaled by mu and sigma
	Ints         []int     // taken modulo n
	Categories   []int

	// Reverse makes Shuffle reverse the order; otherwise it keeps the
	// identity permutation.
	Reverse bool

	// Counters of draws served, by shape.
	ExponentialCalls, NormalCalls, IntCalls, CategoricalCalls, ShuffleCalls int
}

// Exponential returns the next scripted value, or 1.
func (s *ScriptedSource) Exponential() float64 {
	s.ExponentialCalls++
	if len(s.Exponentials) == 0 {
		return 1
	}
	v := s.Exponentials[0]
	s.Exponentials = s.Exponentials[1:]
	return v
}

// Normal returns mu + sigma*z for the next scripted z, or mu.
func (s *ScriptedSource) Normal(mu, sigma float64) float64 {
	s.NormalCalls++
	z := 0.0
	if len(s.Normals) > 0 {
		z = s.Normals[0]
		s.Normals = s.Normals[1:]
	}
	return mu + sigma*z
}

// IntN returns the next scripted integer modulo n, or n-1.
func (s *ScriptedSource) IntN(n int) int {
	s.IntCalls++
	if len(s.Ints) == 0 {
		return n - 1
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	return v % n
}

// Categorical returns the next scripted index, or 0.
func (s *ScriptedSource) Categorical(weights []float64) int {
	s.CategoricalCalls++
	if len(s.Categories) == 0 {
		return 0
	}
	v := s.Categories[0]
	s.Categories = s.Categories[1:]
	return v
}

// Shuffle keeps the identity order, or reverses it when Reverse is set.
func (s *ScriptedSource) Shuffle(n int, swap func(i, j int)) {
	s.ShuffleCalls++
	if !s.Reverse {
		return
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}
