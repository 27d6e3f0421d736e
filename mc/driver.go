package mc

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SampleMode selects the unit in which the sample period is counted. Both
// modes count event attempts; a pass is n_variable_sites attempts.
type SampleMode int

const (
	// SampleByPass takes a sample every SamplePeriod passes (default).
	SampleByPass SampleMode = iota
	// SampleByStep takes a sample every SamplePeriod attempts.
	SampleByStep
)

// GeneralizedPotentialKey is the State.Properties key under which the
// driver keeps the extensive generalized potential current during a run.
const GeneralizedPotentialKey = "generalized_potential"

// ProgressSnapshot is the structured progress report handed to the optional
// status callback and written to the log at the configured frequency.
type ProgressSnapshot struct {
	RunID          string                 `json:"run_id"`
	Step           int64                  `json:"step"`
	Count          int64                  `json:"count"`
	NSamples       int                    `json:"n_samples"`
	NAccept        int64                  `json:"n_accept"`
	NReject        int64                  `json:"n_reject"`
	AcceptanceRate float64                `json:"acceptance_rate"`
	Elapsed        time.Duration          `json:"elapsed"`
	LatestResults  CompletionCheckResults `json:"latest_completion_check"`
}

// MethodLog controls side-channel progress reporting. It never alters
// control flow or ordering; a nil MethodLog disables reporting.
type MethodLog struct {
	// Frequency is the minimum wall time between progress reports.
	Frequency time.Duration

	// StatusFunc, if set, receives each progress snapshot in addition to
	// the log line.
	StatusFunc func(ProgressSnapshot)
}

// RunError wraps a fatal run error with the step index at which it
// occurred. Partial results are still returned alongside it.
type RunError struct {
	Step int64
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run aborted at step %d: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Results is the bundle a run produces: sampled data, accept/reject
// counters, and the final completion check results.
type Results struct {
	RunID                  string                 `json:"run_id"`
	Samplers               map[string][][]float64 `json:"samplers"`
	NAccept                int64                  `json:"n_accept"`
	NReject                int64                  `json:"n_reject"`
	CompletionCheckResults CompletionCheckResults `json:"completion_check_results"`

	// SamplerMap gives programmatic access to the same sampled data.
	SamplerMap *SamplerMap `json:"-"`
}

// RunParams are the inputs to one Monte Carlo run.
type RunParams struct {
	// State is the initial configuration and conditions; mutated in place
	// during the run and owned exclusively by the driver until Run returns.
	State *State

	// EventGenerator proposes and applies occupation events.
	EventGenerator OccEventGenerator

	// Potentials are the generalized-potential terms; their extensive
	// deltas combine additively into the acceptance criterion. Each must
	// produce scalar values.
	Potentials []PropertyCalculator

	// SamplingFunctions fixes the sampled quantities for the run.
	SamplingFunctions []SamplingFunction

	// CompletionParams configures cutoffs, schedule, and precision.
	CompletionParams CompletionCheckParams

	// SamplePeriod is the positive sampling period, counted per SampleMode.
	SamplePeriod int64
	SampleMode   SampleMode

	// Seed seeds the run's partitioned random source: proposal draws use
	// the seed directly, acceptance draws use a derived subsystem stream.
	// Ignored if Random is set.
	Seed   int64
	Random *PartitionedRandomSource

	// MethodLog enables progress reporting (optional).
	MethodLog *MethodLog
}

// SimulationDriver orchestrates the Metropolis accept/reject loop:
// proposal, incremental evaluation, acceptance test, apply/reject, periodic
// sampling, and scheduled completion checks. One driver exclusively owns
// its State, random streams, and SamplerMap; the loop is strictly
// sequential. Proposal and acceptance draw from isolated subsystem streams
// of one partitioned source, so the proposal sequence is a function of the
// seed alone.
type SimulationDriver struct {
	runID      string
	state      *State
	generator  OccEventGenerator
	potentials []PropertyCalculator
	functions  []SamplingFunction
	samplers   *SamplerMap
	completion *CompletionCheck
	proposal   *RandomSource
	acceptance *RandomSource
	methodLog  *MethodLog

	attemptsPerSample int64
	attemptsPerCount  int64

	step    int64
	nAccept int64
	nReject int64
}

// NewSimulationDriver validates the run inputs and binds all components.
// Validation failures are configuration errors, reported before the run
// starts: unregistered convergence quantities, zero variable sites, a
// non-positive sample period, or an invalid check schedule.
func NewSimulationDriver(params RunParams) (*SimulationDriver, error) {
	if params.State == nil {
		return nil, fmt.Errorf("run requires an initial state")
	}
	if params.EventGenerator == nil {
		return nil, fmt.Errorf("run requires an event generator")
	}
	if params.SamplePeriod <= 0 {
		return nil, fmt.Errorf("sample_period must be positive, got %d", params.SamplePeriod)
	}
	nVariable := params.State.Configuration.NVariableSites()
	if nVariable == 0 {
		return nil, fmt.Errorf("%w: configuration has zero variable sites", ErrNoLegalEvent)
	}

	registered := make(map[string]bool, len(params.SamplingFunctions))
	for _, f := range params.SamplingFunctions {
		if registered[f.Name] {
			return nil, fmt.Errorf("duplicate sampling function %q", f.Name)
		}
		registered[f.Name] = true
	}
	for name := range params.CompletionParams.RequestedPrecision {
		if !registered[name] {
			return nil, fmt.Errorf("requested precision references unregistered sampling function %q", name)
		}
	}

	beta := params.State.Conditions.Beta()
	if math.IsNaN(beta) || math.IsInf(beta, 0) || beta <= 0 {
		return nil, fmt.Errorf("conditions yield invalid beta %v", beta)
	}

	// This driver defines no simulated time, so a time cutoff could never
	// fire (max) or would block termination forever (min).
	if params.CompletionParams.CutoffParams.MinTime != nil ||
		params.CompletionParams.CutoffParams.MaxTime != nil {
		return nil, fmt.Errorf("simulated-time cutoffs are not supported by the Metropolis driver")
	}

	completion, err := NewCompletionCheck(params.CompletionParams)
	if err != nil {
		return nil, err
	}

	if err := params.EventGenerator.SetState(params.State); err != nil {
		return nil, fmt.Errorf("binding event generator: %w", err)
	}
	for i, p := range params.Potentials {
		if err := p.SetState(params.State); err != nil {
			return nil, fmt.Errorf("binding potential term %d: %w", i, err)
		}
	}

	random := params.Random
	if random == nil {
		random = NewPartitionedRandomSource(NewRunKey(params.Seed))
	}

	attemptsPerCount := int64(1)
	if params.SampleMode == SampleByPass {
		attemptsPerCount = int64(nVariable)
	}

	return &SimulationDriver{
		runID:             uuid.NewString(),
		state:             params.State,
		generator:         params.EventGenerator,
		potentials:        params.Potentials,
		functions:         params.SamplingFunctions,
		samplers:          NewSamplerMap(params.SamplingFunctions),
		completion:        completion,
		proposal:          random.ForSubsystem(SubsystemProposal),
		acceptance:        random.ForSubsystem(SubsystemAcceptance),
		methodLog:         params.MethodLog,
		attemptsPerSample: params.SamplePeriod * attemptsPerCount,
		attemptsPerCount:  attemptsPerCount,
	}, nil
}

// RunID returns the unique identifier assigned to this run.
func (d *SimulationDriver) RunID() string { return d.runID }

// Samplers returns the driver's sampler map.
func (d *SimulationDriver) Samplers() *SamplerMap { return d.samplers }

// NAccept returns the number of accepted events so far.
func (d *SimulationDriver) NAccept() int64 { return d.nAccept }

// NReject returns the number of rejected events so far.
func (d *SimulationDriver) NReject() int64 { return d.nReject }

// Run executes the Metropolis loop until the completion check reports
// complete or a fatal error occurs. On error, whatever has been sampled so
// far is still returned alongside a *RunError carrying the step index.
func (d *SimulationDriver) Run() (*Results, error) {
	start := time.Now()
	beta := d.state.Conditions.Beta()

	// Initialize the tracked generalized potential from a full evaluation;
	// the loop keeps it current from deltas.
	potential := 0.0
	for _, p := range d.potentials {
		potential += p.PerSupercell().Float()
	}
	d.state.Properties[GeneralizedPotentialKey] = Scalar(potential)

	nextReport := time.Time{}
	if d.methodLog != nil && d.methodLog.Frequency > 0 {
		nextReport = start.Add(d.methodLog.Frequency)
	}

	logrus.Infof("[run %s] starting: %d sites, %d variable, sampling every %s attempts",
		d.runID, d.state.Configuration.NSites(), d.state.Configuration.NVariableSites(),
		humanize.Comma(d.attemptsPerSample))

	for {
		event, err := d.generator.Propose(d.proposal)
		if err != nil {
			return d.bundle(), &RunError{Step: d.step, Err: err}
		}
		if err := checkEventSites(event, d.state.Configuration); err != nil {
			return d.bundle(), &RunError{Step: d.step, Err: err}
		}

		delta := 0.0
		for _, p := range d.potentials {
			delta += p.OccDeltaPerSupercell(event.LinearSiteIndex, event.NewOcc).Float()
		}

		accept := delta <= 0 || d.acceptance.UniformReal() < math.Exp(-delta*beta)
		if accept {
			if err := d.generator.Apply(event); err != nil {
				return d.bundle(), &RunError{Step: d.step, Err: err}
			}
			potential += delta
			d.state.Properties[GeneralizedPotentialKey] = Scalar(potential)
			d.nAccept++
		} else {
			d.nReject++
		}
		d.step++

		complete := false
		if d.step%d.attemptsPerSample == 0 {
			d.sample()
			if d.samplers.NSamples() >= d.completion.NextCheckAt() {
				complete = d.completion.Check(d.samplers, d.snapshot(start))
			}
		}

		// Max cutoffs are evaluated every iteration so callers can bound
		// runtime even if convergence is never reached.
		if !complete && d.completion.AnyMaximumMet(d.snapshot(start)) {
			complete = d.completion.Check(d.samplers, d.snapshot(start))
		}

		if d.methodLog != nil && !nextReport.IsZero() && time.Now().After(nextReport) {
			d.report(start)
			nextReport = time.Now().Add(d.methodLog.Frequency)
		}

		if complete {
			break
		}
	}

	if d.methodLog != nil {
		d.report(start)
	}
	logrus.Infof("[run %s] complete: %s attempts, %d samples, accept rate %.3f",
		d.runID, humanize.Comma(d.step), d.samplers.NSamples(),
		float64(d.nAccept)/float64(d.step))

	return d.bundle(), nil
}

// sample evaluates every registered sampling function against the current
// state and appends the results in registration order.
func (d *SimulationDriver) sample() {
	for _, f := range d.functions {
		d.samplers.Get(f.Name).Append(f.Func(d.state))
	}
}

func (d *SimulationDriver) snapshot(start time.Time) CountSnapshot {
	return CountSnapshot{
		Count:     d.step / d.attemptsPerCount,
		Clocktime: time.Since(start).Seconds(),
		NSamples:  d.samplers.NSamples(),
	}
}

func (d *SimulationDriver) report(start time.Time) {
	snapshot := ProgressSnapshot{
		RunID:          d.runID,
		Step:           d.step,
		Count:          d.step / d.attemptsPerCount,
		NSamples:       d.samplers.NSamples(),
		NAccept:        d.nAccept,
		NReject:        d.nReject,
		AcceptanceRate: float64(d.nAccept) / float64(d.step),
		Elapsed:        time.Since(start),
		LatestResults:  d.completion.Results(),
	}
	logrus.Infof("[run %s] %s attempts, %d samples, accept rate %.3f, complete=%v",
		d.runID, humanize.Comma(snapshot.Step), snapshot.NSamples,
		snapshot.AcceptanceRate, snapshot.LatestResults.IsComplete)
	if d.methodLog.StatusFunc != nil {
		d.methodLog.StatusFunc(snapshot)
	}
}

func (d *SimulationDriver) bundle() *Results {
	return &Results{
		RunID:                  d.runID,
		Samplers:               d.samplers.Serializable(),
		NAccept:                d.nAccept,
		NReject:                d.nReject,
		CompletionCheckResults: d.completion.Results(),
		SamplerMap:             d.samplers,
	}
}
