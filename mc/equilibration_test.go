package mc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEquilibrationCheck_ShortSeries(t *testing.T) {
	result := DefaultEquilibrationCheck([]float64{1, 2, 3}, 10)
	assert.False(t, result.IsEquilibrated)
}

func TestDefaultEquilibrationCheck_StationarySeries(t *testing.T) {
	observations := make([]float64, 200)
	for i := range observations {
		observations[i] = 1.0 + 0.001*math.Sin(float64(i))
	}
	result := DefaultEquilibrationCheck(observations, 0.01)
	assert.True(t, result.IsEquilibrated)
	assert.Equal(t, 0, result.EquilibrationIndex)
}

func TestDefaultEquilibrationCheck_InitialTransientTruncated(t *testing.T) {
	// A big transient over the first quarter, then flat. The two-half test
	// must reject index 0 and find a truncation point past the transient.
	observations := make([]float64, 400)
	for i := range observations {
		if i < 100 {
			observations[i] = 10.0 - float64(i)*0.1
		}
	}
	result := DefaultEquilibrationCheck(observations, 0.05)
	assert.True(t, result.IsEquilibrated)
	assert.Equal(t, 100, result.EquilibrationIndex)
}

func TestDefaultEquilibrationCheck_PersistentDrift(t *testing.T) {
	// A ramp that never flattens drifts in every tail.
	observations := make([]float64, 200)
	for i := range observations {
		observations[i] = float64(i)
	}
	result := DefaultEquilibrationCheck(observations, 0.5)
	assert.False(t, result.IsEquilibrated)
}

func TestDefaultEquilibrationCheck_StepChangeTruncatedAtStep(t *testing.T) {
	observations := make([]float64, 100)
	for i := range observations {
		observations[i] = float64(i%2) * 0.1
	}
	// Half means agree exactly here, so even a zero tolerance passes.
	assert.True(t, DefaultEquilibrationCheck(observations, 0).IsEquilibrated)

	// A level shift halfway through: every candidate straddling the shift
	// fails, and the first passing truncation point sits exactly on it.
	for i := 50; i < 100; i++ {
		observations[i] += 5
	}
	result := DefaultEquilibrationCheck(observations, 0.01)
	assert.True(t, result.IsEquilibrated)
	assert.Equal(t, 50, result.EquilibrationIndex)
}
