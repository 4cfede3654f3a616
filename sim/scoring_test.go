package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchool(id int, prestige, efficacy, tuition float64) *School {
	return &School{ID: id, Endowment: 1, Prestige: prestige, Efficacy: efficacy, Tuition: tuition}
}

func TestScore_WeightedSumMinusCost(t *testing.T) {
	tests := []struct {
		name   string
		w      Weights
		school *School
		want   float64
	}{
		{"prestige only", Weights{1, 0, 0}, testSchool(0, 0.8, 0.1, 0.4), 0.8},
		{"efficacy only", Weights{0, 1, 0}, testSchool(0, 0.8, 0.1, 0.4), 0.1},
		{"cost only is negative", Weights{0, 0, 1}, testSchool(0, 0.8, 0.1, 0.4), -0.4},
		{"mixed", Weights{0.2, 0.3, 0.5}, testSchool(0, 1, 2, 0.5), 0.2 + 0.6 - 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.w, tt.school), 1e-12)
		})
	}
}

func TestChoose_PicksHighestScore(t *testing.T) {
	schools := []*School{
		testSchool(0, 0.2, 0.2, 0.1),
		testSchool(1, 0.9, 0.2, 0.1),
		testSchool(2, 0.5, 0.2, 0.1),
	}

	c, err := Choose(Weights{1, 0, 0}, schools)

	require.NoError(t, err)
	assert.Equal(t, 1, c.School.ID)
	assert.InDelta(t, 0.9, c.Score, 1e-12)
}

func TestChoose_TiesGoToLowestIndex(t *testing.T) {
	// GIVEN three identical schools
	schools := []*School{
		testSchool(0, 0.5, 0.5, 0.25),
		testSchool(1, 0.5, 0.5, 0.25),
		testSchool(2, 0.5, 0.5, 0.25),
	}

	// WHEN any family chooses
	for _, w := range []Weights{{1, 0, 0}, {0, 0, 1}, {0.3, 0.3, 0.4}} {
		c, err := Choose(w, schools)

		// THEN the first roster entry wins
		require.NoError(t, err)
		assert.Equal(t, 0, c.School.ID, "weights %s", w)
	}
}

func TestChoose_AllNegativeScoresStillChooses(t *testing.T) {
	// GIVEN a cost-only family and schools whose scores are all negative
	schools := []*School{
		testSchool(0, 1, 1, 3),
		testSchool(1, 1, 1, 2),
	}

	c, err := Choose(Weights{0, 0, 1}, schools)

	// THEN the least negative score wins
	require.NoError(t, err)
	assert.Equal(t, 1, c.School.ID)
	assert.InDelta(t, -2, c.Score, 1e-12)
}

func TestChoose_Idempotent(t *testing.T) {
	// GIVEN an unchanged roster
	schools := []*School{
		testSchool(0, 0.3, 0.9, 0.15),
		testSchool(1, 0.7, 0.2, 0.35),
	}
	w := Weights{0.4, 0.4, 0.2}

	first, err := Choose(w, schools)
	require.NoError(t, err)

	// WHEN the same family chooses repeatedly
	for i := 0; i < 10; i++ {
		again, err := Choose(w, schools)
		require.NoError(t, err)
		// THEN the result never changes
		assert.Same(t, first.School, again.School)
	}
}

func TestChoose_EmptyRoster(t *testing.T) {
	_, err := Choose(Weights{1, 0, 0}, nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}
