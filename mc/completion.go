package mc

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// RequestedPrecision is the per-property convergence target. Nil fields
// mean "not requested"; when both are set, both must be satisfied.
type RequestedPrecision struct {
	Abs *float64 `json:"abs_precision,omitempty" yaml:"abs,omitempty"`
	Rel *float64 `json:"rel_precision,omitempty" yaml:"rel,omitempty"`
}

// AbsPrecision builds a RequestedPrecision with only an absolute target.
func AbsPrecision(abs float64) RequestedPrecision {
	return RequestedPrecision{Abs: &abs}
}

// RelPrecision builds a RequestedPrecision with only a relative target.
func RelPrecision(rel float64) RequestedPrecision {
	return RequestedPrecision{Rel: &rel}
}

// CutoffCheckParams holds the hard limits that prevent a run from stopping
// too soon or force it to stop. Nil means no limit. Counts refer to steps
// or passes depending on the driver's sampling mode; time is simulated
// time; clocktime is elapsed wall time in seconds.
type CutoffCheckParams struct {
	MinCount *int64 `json:"min_count,omitempty" yaml:"min_count,omitempty"`
	MaxCount *int64 `json:"max_count,omitempty" yaml:"max_count,omitempty"`

	MinSample *int `json:"min_sample,omitempty" yaml:"min_sample,omitempty"`
	MaxSample *int `json:"max_sample,omitempty" yaml:"max_sample,omitempty"`

	MinTime *float64 `json:"min_time,omitempty" yaml:"min_time,omitempty"`
	MaxTime *float64 `json:"max_time,omitempty" yaml:"max_time,omitempty"`

	MinClocktime *float64 `json:"min_clocktime,omitempty" yaml:"min_clocktime,omitempty"`
	MaxClocktime *float64 `json:"max_clocktime,omitempty" yaml:"max_clocktime,omitempty"`
}

// CompletionCheckParams configures the completion-check engine: cutoffs,
// the check schedule, and the per-property requested precision.
//
// Check schedule: the first check runs when CheckBegin samples have been
// collected. For linear spacing the n-th check runs at
//
//	round( begin + (period / checks_per_period) * n )
//
// and for log spacing at
//
//	round( begin + period ^ ((n + shift) / checks_per_period) )
type CompletionCheckParams struct {
	CutoffParams CutoffCheckParams

	// RequestedPrecision maps sampling-function name to the precision its
	// mean must reach. Every component of the sampled vector must satisfy
	// the target.
	RequestedPrecision map[string]RequestedPrecision

	LogSpacing      bool
	CheckBegin      float64
	CheckPeriod     float64
	ChecksPerPeriod float64
	CheckShift      float64

	// Statistics is the precision estimator. Defaults to
	// BasicStatisticsCalculator at 0.95 confidence.
	Statistics StatisticsCalculator

	// EquilibrationCheck is the drift test. Defaults to
	// DefaultEquilibrationCheck.
	EquilibrationCheck EquilibrationCheckFunc
}

// NewCompletionCheckParams returns params with the default schedule
// (linear, begin 0, period 10, one check per period) and default policies,
// and no cutoffs or precision targets.
func NewCompletionCheckParams() CompletionCheckParams {
	return CompletionCheckParams{
		RequestedPrecision: map[string]RequestedPrecision{},
		CheckBegin:         0,
		CheckPeriod:        10,
		ChecksPerPeriod:    1,
		CheckShift:         1,
		Statistics:         NewBasicStatisticsCalculator(),
		EquilibrationCheck: DefaultEquilibrationCheck,
	}
}

// IndividualConvergenceResult reports the convergence state of one
// property: the worst calculated precision across its components, the mean
// of the worst component, and whether every component met its target.
type IndividualConvergenceResult struct {
	Converged           bool    `json:"converged"`
	CalculatedPrecision float64 `json:"calculated_precision"`
	Mean                float64 `json:"mean"`
	NSamplesForStats    int     `json:"n_samples_for_statistics"`
}

// MarshalJSON renders an indeterminate calculated precision (too few
// samples, unequilibrated, forced termination) as null, so results bundles
// of aborted and unconverged runs still serialize.
func (r IndividualConvergenceResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Converged           bool     `json:"converged"`
		CalculatedPrecision *float64 `json:"calculated_precision"`
		Mean                float64  `json:"mean"`
		NSamplesForStats    int      `json:"n_samples_for_statistics"`
	}{
		Converged:        r.Converged,
		Mean:             r.Mean,
		NSamplesForStats: r.NSamplesForStats,
	}
	if !math.IsInf(r.CalculatedPrecision, 0) && !math.IsNaN(r.CalculatedPrecision) {
		out.CalculatedPrecision = &r.CalculatedPrecision
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null as an indeterminate (infinite) precision.
func (r *IndividualConvergenceResult) UnmarshalJSON(data []byte) error {
	var in struct {
		Converged           bool     `json:"converged"`
		CalculatedPrecision *float64 `json:"calculated_precision"`
		Mean                float64  `json:"mean"`
		NSamplesForStats    int      `json:"n_samples_for_statistics"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Converged = in.Converged
	r.Mean = in.Mean
	r.NSamplesForStats = in.NSamplesForStats
	if in.CalculatedPrecision != nil {
		r.CalculatedPrecision = *in.CalculatedPrecision
	} else {
		r.CalculatedPrecision = math.Inf(1)
	}
	return nil
}

// EquilibrationCheckResults aggregates per-property equilibration results.
type EquilibrationCheckResults struct {
	AllEquilibrated   bool                                     `json:"all_equilibrated"`
	IndividualResults map[string]IndividualEquilibrationResult `json:"individual_results"`
}

// ConvergenceCheckResults aggregates per-property convergence results.
type ConvergenceCheckResults struct {
	AllConverged      bool                                   `json:"all_converged"`
	IndividualResults map[string]IndividualConvergenceResult `json:"individual_results"`
}

// CompletionCheckResults is the serializable outcome of the latest
// completion check. A run that hit a max cutoff without converging is
// distinguishable from a converged run: HasAnyMaximumMet is true and
// AllConverged is false.
type CompletionCheckResults struct {
	HasAllMinimumsMet bool    `json:"has_all_minimums_met"`
	HasAnyMaximumMet  bool    `json:"has_any_maximum_met"`
	Count             int64   `json:"count"`
	Time              float64 `json:"time"`
	Clocktime         float64 `json:"clocktime"`
	NSamples          int     `json:"n_samples"`

	// NSamplesAtConvergenceCheck is set once equilibration/convergence has
	// been evaluated at least once.
	NSamplesAtConvergenceCheck *int `json:"n_samples_at_convergence_check,omitempty"`

	EquilibrationCheckResults EquilibrationCheckResults `json:"equilibration_check_results"`
	ConvergenceCheckResults   ConvergenceCheckResults   `json:"convergence_check_results"`

	IsComplete bool `json:"is_complete"`
}

// CountSnapshot carries the run counters the cutoff checks compare against.
type CountSnapshot struct {
	Count     int64   // steps or passes, per the driver's sampling mode
	Time      float64 // simulated time, if the method defines one
	Clocktime float64 // elapsed wall time in seconds
	NSamples  int
}

// CompletionCheck evaluates equilibration and convergence of sampled series
// against the requested precision and cutoff rules, only at scheduled check
// points, and decides whether the run is complete.
type CompletionCheck struct {
	params  CompletionCheckParams
	results CompletionCheckResults

	// nChecks counts scheduled check points consumed so far, indexing the
	// schedule formula.
	nChecks int
}

// NewCompletionCheck validates the schedule and builds the engine.
// Requested-precision names are validated against the registered sampling
// functions by the driver, which knows the registry.
func NewCompletionCheck(params CompletionCheckParams) (*CompletionCheck, error) {
	if params.LogSpacing && params.CheckPeriod <= 1 {
		return nil, fmt.Errorf("log-spaced checks require period > 1, got %v", params.CheckPeriod)
	}
	if !params.LogSpacing && params.CheckPeriod <= 0 {
		return nil, fmt.Errorf("linear-spaced checks require period > 0, got %v", params.CheckPeriod)
	}
	if params.ChecksPerPeriod <= 0 {
		return nil, fmt.Errorf("checks_per_period must be > 0, got %v", params.ChecksPerPeriod)
	}
	if params.Statistics == nil {
		params.Statistics = NewBasicStatisticsCalculator()
	}
	if params.EquilibrationCheck == nil {
		params.EquilibrationCheck = DefaultEquilibrationCheck
	}
	return &CompletionCheck{params: params}, nil
}

// Params returns the engine's parameters.
func (c *CompletionCheck) Params() CompletionCheckParams { return c.params }

// Results returns the latest completion check results.
func (c *CompletionCheck) Results() CompletionCheckResults { return c.results }

// NextCheckAt returns the sample count at which the next scheduled check
// point falls. Never evaluated between check points: the driver compares
// the sampler count against this before calling Check.
func (c *CompletionCheck) NextCheckAt() int {
	return c.checkAt(c.nChecks)
}

func (c *CompletionCheck) checkAt(n int) int {
	p := c.params
	var at float64
	if n == 0 {
		at = p.CheckBegin
	} else if p.LogSpacing {
		at = p.CheckBegin + math.Pow(p.CheckPeriod, (float64(n)+p.CheckShift)/p.ChecksPerPeriod)
	} else {
		at = p.CheckBegin + p.CheckPeriod/p.ChecksPerPeriod*float64(n)
	}
	return int(math.Round(at))
}

// Check runs one scheduled completion check and reports whether the run is
// complete. It advances the internal schedule past the current sample
// count, so the driver's next NextCheckAt is strictly in the future.
func (c *CompletionCheck) Check(samplers *SamplerMap, snapshot CountSnapshot) bool {
	for c.checkAt(c.nChecks) <= snapshot.NSamples {
		c.nChecks++
	}

	results := CompletionCheckResults{
		Count:     snapshot.Count,
		Time:      snapshot.Time,
		Clocktime: snapshot.Clocktime,
		NSamples:  snapshot.NSamples,
	}
	results.HasAllMinimumsMet = c.allMinimumsMet(snapshot)
	results.HasAnyMaximumMet = c.anyMaximumMet(snapshot)

	c.checkStatistics(samplers, &results)

	switch {
	case results.HasAnyMaximumMet:
		// Forced termination: distinguishable from convergent termination
		// via HasAnyMaximumMet / AllConverged.
		results.IsComplete = true
	case !results.HasAllMinimumsMet:
		results.IsComplete = false
	default:
		results.IsComplete = results.EquilibrationCheckResults.AllEquilibrated &&
			results.ConvergenceCheckResults.AllConverged
	}

	c.results = results
	return results.IsComplete
}

// checkStatistics evaluates the equilibration then convergence checks for
// every requested property. Convergence is evaluated only on the
// post-equilibration portion of each series.
func (c *CompletionCheck) checkStatistics(samplers *SamplerMap, results *CompletionCheckResults) {
	equilibration := EquilibrationCheckResults{
		AllEquilibrated:   true,
		IndividualResults: make(map[string]IndividualEquilibrationResult),
	}
	convergence := ConvergenceCheckResults{
		AllConverged:      true,
		IndividualResults: make(map[string]IndividualConvergenceResult),
	}

	names := make([]string, 0, len(c.params.RequestedPrecision))
	for name := range c.params.RequestedPrecision {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		requested := c.params.RequestedPrecision[name]
		sampler := samplers.Get(name)
		equilResult, convResult := c.checkProperty(sampler, requested)
		equilibration.IndividualResults[name] = equilResult
		convergence.IndividualResults[name] = convResult
		if !equilResult.IsEquilibrated {
			equilibration.AllEquilibrated = false
		}
		if !convResult.Converged {
			convergence.AllConverged = false
		}
	}

	n := samplers.NSamples()
	results.NSamplesAtConvergenceCheck = &n
	results.EquilibrationCheckResults = equilibration
	results.ConvergenceCheckResults = convergence
}

// checkProperty evaluates one property. Every component of the sampled
// vector must equilibrate and converge; the reported equilibration index is
// the largest across components and the reported precision is the worst.
func (c *CompletionCheck) checkProperty(sampler *Sampler, requested RequestedPrecision) (IndividualEquilibrationResult, IndividualConvergenceResult) {
	equilResult := IndividualEquilibrationResult{IsEquilibrated: true}
	convResult := IndividualConvergenceResult{Converged: true, NSamplesForStats: sampler.NSamples()}

	for component := 0; component < sampler.Dim(); component++ {
		observations := sampler.Component(component)

		tolerance := c.equilibrationTolerance(observations, requested)
		equil := c.params.EquilibrationCheck(observations, tolerance)
		if !equil.IsEquilibrated {
			equilResult.IsEquilibrated = false
			convResult.Converged = false
			convResult.CalculatedPrecision = math.Inf(1)
			continue
		}
		if equil.EquilibrationIndex > equilResult.EquilibrationIndex {
			equilResult.EquilibrationIndex = equil.EquilibrationIndex
		}

		stats := c.params.Statistics.Calc(observations[equil.EquilibrationIndex:])
		if stats.CalculatedPrecision >= convResult.CalculatedPrecision || component == 0 {
			convResult.CalculatedPrecision = stats.CalculatedPrecision
			convResult.Mean = stats.Mean
			convResult.NSamplesForStats = stats.NSamples
		}
		if !precisionMet(stats, requested) {
			convResult.Converged = false
		}
	}
	return equilResult, convResult
}

// equilibrationTolerance derives the drift tolerance from the requested
// precision: the absolute target when set, otherwise the relative target
// scaled by the magnitude of the series mean.
func (c *CompletionCheck) equilibrationTolerance(observations []float64, requested RequestedPrecision) float64 {
	if requested.Abs != nil {
		return *requested.Abs
	}
	if requested.Rel != nil && len(observations) > 0 {
		var sum float64
		for _, x := range observations {
			sum += x
		}
		return *requested.Rel * math.Abs(sum/float64(len(observations)))
	}
	return 0
}

// precisionMet reports whether the calculated precision satisfies the
// requested absolute and/or relative targets.
func precisionMet(stats BasicStatistics, requested RequestedPrecision) bool {
	if math.IsInf(stats.CalculatedPrecision, 1) {
		return false
	}
	if requested.Abs != nil && stats.CalculatedPrecision > *requested.Abs {
		return false
	}
	if requested.Rel != nil && stats.CalculatedPrecision > *requested.Rel*math.Abs(stats.Mean) {
		return false
	}
	return true
}

// AnyMaximumMet reports whether any configured maximum cutoff is reached
// for the given counters. Cheap enough for the driver to consult every
// iteration, so callers can bound runtime even when convergence is never
// reached.
func (c *CompletionCheck) AnyMaximumMet(s CountSnapshot) bool {
	return c.anyMaximumMet(s)
}

// allMinimumsMet reports whether every configured minimum cutoff is
// satisfied.
func (c *CompletionCheck) allMinimumsMet(s CountSnapshot) bool {
	p := c.params.CutoffParams
	if p.MinCount != nil && s.Count < *p.MinCount {
		return false
	}
	if p.MinSample != nil && s.NSamples < *p.MinSample {
		return false
	}
	if p.MinTime != nil && s.Time < *p.MinTime {
		return false
	}
	if p.MinClocktime != nil && s.Clocktime < *p.MinClocktime {
		return false
	}
	return true
}

// anyMaximumMet reports whether any configured maximum cutoff is reached.
func (c *CompletionCheck) anyMaximumMet(s CountSnapshot) bool {
	p := c.params.CutoffParams
	if p.MaxCount != nil && s.Count >= *p.MaxCount {
		return true
	}
	if p.MaxSample != nil && s.NSamples >= *p.MaxSample {
		return true
	}
	if p.MaxTime != nil && s.Time >= *p.MaxTime {
		return true
	}
	if p.MaxClocktime != nil && s.Clocktime >= *p.MaxClocktime {
		return true
	}
	return false
}
