package mc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// IndividualEquilibrationResult reports whether one sampled series has
// stopped drifting, and if so at which sample index.
type IndividualEquilibrationResult struct {
	IsEquilibrated     bool `json:"is_equilibrated"`
	EquilibrationIndex int  `json:"equilibration_index"`
}

// EquilibrationCheckFunc decides whether a series has equilibrated to
// within the given tolerance. Pluggable policy; DefaultEquilibrationCheck
// is used unless CompletionCheckParams overrides it.
type EquilibrationCheckFunc func(observations []float64, tolerance float64) IndividualEquilibrationResult

// DefaultEquilibrationCheck detects the end of systematic drift with a
// two-half test: for candidate truncation points at 5% increments of the
// series (up to half its length), split the remaining tail into two halves
// and declare equilibration at the first candidate where the half means
// differ by no more than the tolerance. The half-mean difference of a
// stationary series shrinks as 1/sqrt(N), the same scale the convergence
// criterion resolves, so a series that can converge will also pass here.
func DefaultEquilibrationCheck(observations []float64, tolerance float64) IndividualEquilibrationResult {
	n := len(observations)
	if n < minSamplesForStatistics {
		return IndividualEquilibrationResult{}
	}

	step := n / 20
	if step < 1 {
		step = 1
	}
	for start := 0; start <= n/2; start += step {
		tail := observations[start:]
		half := len(tail) / 2
		first := stat.Mean(tail[:half], nil)
		second := stat.Mean(tail[half:], nil)
		if math.Abs(first-second) <= tolerance {
			return IndividualEquilibrationResult{
				IsEquilibrated:     true,
				EquilibrationIndex: start,
			}
		}
	}
	return IndividualEquilibrationResult{}
}
