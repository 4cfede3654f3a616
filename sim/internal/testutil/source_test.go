package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedSource_ScriptedThenDefaults(t *testing.T) {
	s := &ScriptedSource{
		Exponentials: []float64{2.5},
		Normals:      []float64{-1},
		Ints:         []int{12},
		Categories:   []int{1},
	}

	assert.Equal(t, 2.5, s.Exponential())
	assert.Equal(t, 1.0, s.Exponential())
	assert.Equal(t, 10-3.0, s.Normal(10, 3))
	assert.Equal(t, 10.0, s.Normal(10, 3))
	assert.Equal(t, 2, s.IntN(5))
	assert.Equal(t, 4, s.IntN(5))
	assert.Equal(t, 1, s.Categorical([]float64{0.5, 0.5}))
	assert.Equal(t, 0, s.Categorical([]float64{0.5, 0.5}))

	assert.Equal(t, 2, s.ExponentialCalls)
	assert.Equal(t, 2, s.NormalCalls)
	assert.Equal(t, 2, s.IntCalls)
	assert.Equal(t, 2, s.CategoricalCalls)
}

func TestScriptedSource_Shuffle(t *testing.T) {
	order := []int{0, 1, 2, 3}
	swap := func(i, j int) { order[i], order[j] = order[j], order[i] }

	(&ScriptedSource{}).Shuffle(len(order), swap)
	assert.Equal(t, []int{0, 1, 2, 3}, order)

	(&ScriptedSource{Reverse: true}).Shuffle(len(order), swap)
	assert.Equal(t, []int{3, 2, 1, 0}, order)
}
