package mc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFunctions() []SamplingFunction {
	return []SamplingFunction{
		NewSamplingFunction("energy", "test energy", 1, func(s *State) []float64 {
			return []float64{1.5}
		}),
		NewSamplingFunction("composition", "test composition", 2, func(s *State) []float64 {
			return []float64{0.25, 0.75}
		}),
	}
}

func TestSampler_AppendPreservesOrder(t *testing.T) {
	s := NewSampler(1)
	for i := 0; i < 10; i++ {
		s.Append([]float64{float64(i)})
		assert.Equal(t, i+1, s.NSamples())
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, []float64{float64(i)}, s.Sample(i))
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, s.Component(0))
}

func TestSampler_AppendCopies(t *testing.T) {
	s := NewSampler(2)
	v := []float64{1, 2}
	s.Append(v)
	v[0] = 99
	assert.Equal(t, []float64{1, 2}, s.Sample(0))
}

func TestSampler_DimensionMismatchPanics(t *testing.T) {
	s := NewSampler(2)
	assert.Panics(t, func() { s.Append([]float64{1}) })
}

func TestSamplerMap_RegistrationOrderAndKeys(t *testing.T) {
	m := NewSamplerMap(testFunctions())
	assert.Equal(t, []string{"energy", "composition"}, m.Names())
	require.NotNil(t, m.Get("energy"))
	require.NotNil(t, m.Get("composition"))
	assert.Nil(t, m.Get("unregistered"))
	assert.Equal(t, 2, m.Get("composition").Dim())
	assert.Equal(t, 0, m.NSamples())
}

func TestSamplerMap_Serializable(t *testing.T) {
	m := NewSamplerMap(testFunctions())
	m.Get("energy").Append([]float64{1})
	m.Get("composition").Append([]float64{2, 3})

	out := m.Serializable()
	assert.Equal(t, [][]float64{{1}}, out["energy"])
	assert.Equal(t, [][]float64{{2, 3}}, out["composition"])
	assert.Equal(t, 1, m.NSamples())
}
