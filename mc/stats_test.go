package mc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicStatistics_ShortSeriesNotConverged(t *testing.T) {
	calc := NewBasicStatisticsCalculator()

	stats := calc.Calc(nil)
	assert.True(t, math.IsInf(stats.CalculatedPrecision, 1))
	assert.True(t, math.IsNaN(stats.Mean))

	stats = calc.Calc([]float64{1, 2, 3, 4, 5, 6, 7})
	assert.True(t, math.IsInf(stats.CalculatedPrecision, 1))
	assert.Equal(t, 4.0, stats.Mean)
	assert.Equal(t, 7, stats.NSamples)
}

func TestBasicStatistics_ConstantSeriesIsExact(t *testing.T) {
	observations := make([]float64, 100)
	for i := range observations {
		observations[i] = 2.5
	}
	stats := NewBasicStatisticsCalculator().Calc(observations)
	assert.Equal(t, 2.5, stats.Mean)
	assert.Equal(t, 0.0, stats.CalculatedPrecision)
}

func TestBasicStatistics_UncorrelatedPrecision(t *testing.T) {
	// Alternating series: mean 0.5, sample variance n/(n-1)*0.25, lag-1
	// correlation -1 so the autocorrelation factor stays 1. Expected
	// precision is z * sqrt(var/n) with z = 1.96 at 0.95 confidence.
	n := 1000
	observations := make([]float64, n)
	for i := range observations {
		observations[i] = float64(i % 2)
	}
	stats := NewBasicStatisticsCalculator().Calc(observations)
	require.Equal(t, 0.5, stats.Mean)

	variance := 0.25 * float64(n) / float64(n-1)
	want := 1.959964 * math.Sqrt(variance/float64(n))
	assert.InDelta(t, want, stats.CalculatedPrecision, 1e-5)
}

func TestBasicStatistics_CorrelationWidensPrecision(t *testing.T) {
	// The same observations in correlated blocks carry less information, so
	// the calculated precision must be wider than for the shuffled series.
	n := 1000
	blocked := make([]float64, n)
	alternating := make([]float64, n)
	for i := range blocked {
		blocked[i] = float64((i / 50) % 2)
		alternating[i] = float64(i % 2)
	}
	calc := NewBasicStatisticsCalculator()
	assert.Greater(t,
		calc.Calc(blocked).CalculatedPrecision,
		calc.Calc(alternating).CalculatedPrecision)
}

func TestBasicStatistics_ConfidenceMonotonic(t *testing.T) {
	observations := make([]float64, 100)
	for i := range observations {
		observations[i] = float64(i % 3)
	}
	loose := BasicStatisticsCalculator{Confidence: 0.90}.Calc(observations)
	tight := BasicStatisticsCalculator{Confidence: 0.99}.Calc(observations)
	assert.Greater(t, tight.CalculatedPrecision, loose.CalculatedPrecision)
	assert.Equal(t, loose.Mean, tight.Mean)
}

func TestBasicStatistics_PerfectCorrelationNotConverged(t *testing.T) {
	// A strictly increasing ramp has lag-1 correlation at (or within
	// rounding of) 1; the reported precision must be unusable either way.
	observations := make([]float64, 50)
	for i := range observations {
		observations[i] = float64(i)
	}
	stats := NewBasicStatisticsCalculator().Calc(observations)
	assert.Greater(t, stats.CalculatedPrecision, 100.0)
}
