package mc

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minSamplesForStatistics is the smallest series length for which the
// default calculator reports a finite calculated precision. Below it the
// estimate is statistical indeterminacy, not an error: the series is simply
// reported not converged.
const minSamplesForStatistics = 8

// BasicStatistics holds the mean of a sampled series and the calculated
// precision of that mean (half-width of the confidence interval).
type BasicStatistics struct {
	Mean                float64 `json:"mean"`
	CalculatedPrecision float64 `json:"calculated_precision"`
	NSamples            int     `json:"n_samples"`
}

// StatisticsCalculator computes BasicStatistics for a series of
// observations. It is a pluggable policy; the engine only compares
// CalculatedPrecision against the requested precision.
type StatisticsCalculator interface {
	Calc(observations []float64) BasicStatistics
}

// BasicStatisticsCalculator estimates the precision of the sample mean as
//
//	calculated_precision = z(confidence) * sqrt( var/N * (1+rho)/(1-rho) )
//
// where rho is the lag-1 autocorrelation of the series, clamped to [0, 1).
// The autocorrelation factor compensates for correlated Markov-chain
// samples; with confidence 0.95 the quantile z is approximately 1.96.
type BasicStatisticsCalculator struct {
	// Confidence is the two-sided confidence level in (0, 1).
	Confidence float64
}

// NewBasicStatisticsCalculator returns the default calculator at 0.95
// confidence.
func NewBasicStatisticsCalculator() BasicStatisticsCalculator {
	return BasicStatisticsCalculator{Confidence: 0.95}
}

// Calc implements StatisticsCalculator.
func (c BasicStatisticsCalculator) Calc(observations []float64) BasicStatistics {
	n := len(observations)
	result := BasicStatistics{NSamples: n}
	if n == 0 {
		result.Mean = math.NaN()
		result.CalculatedPrecision = math.Inf(1)
		return result
	}

	result.Mean = stat.Mean(observations, nil)
	if n < minSamplesForStatistics {
		result.CalculatedPrecision = math.Inf(1)
		return result
	}

	variance := stat.Variance(observations, nil)
	if variance <= 0 {
		// Constant series: the mean is exact.
		result.CalculatedPrecision = 0
		return result
	}

	rho := stat.Correlation(observations[:n-1], observations[1:], nil)
	factor := 1.0
	if rho > 0 {
		if rho >= 1 {
			result.CalculatedPrecision = math.Inf(1)
			return result
		}
		factor = (1 + rho) / (1 - rho)
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + c.Confidence/2)
	result.CalculatedPrecision = z * math.Sqrt(variance/float64(n)*factor)
	return result
}
