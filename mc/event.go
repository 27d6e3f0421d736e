package mc

import (
	"errors"
	"fmt"
)

// OccEvent is a proposed occupation change: an ordered list of
// (site index, new occupant value) pairs. Site indices are distinct within
// one event. Events are transient, recreated on each proposal.
type OccEvent struct {
	// LinearSiteIndex lists the sites whose occupation would change.
	LinearSiteIndex []int

	// NewOcc lists the trial occupant values, paired with LinearSiteIndex.
	NewOcc []int
}

// Size returns the number of sites the event touches.
func (e *OccEvent) Size() int { return len(e.LinearSiteIndex) }

// Contract-violation and proposal errors. Applying out of order or with a
// stale event is a caller bug, not a runtime condition to recover from; the
// driver aborts the run and reports the step index when one surfaces.
var (
	// ErrNoProposal is returned by Apply when no proposal is pending.
	ErrNoProposal = errors.New("apply called with no pending proposal")

	// ErrStaleEvent is returned by Apply when the event does not match the
	// last proposal.
	ErrStaleEvent = errors.New("apply called with an event that does not match the last proposal")

	// ErrUnboundGenerator is returned by Propose before SetState binds a
	// state.
	ErrUnboundGenerator = errors.New("event generator has no bound state")

	// ErrNoLegalEvent is returned by Propose when the model admits no
	// legal event (e.g. zero variable sites).
	ErrNoLegalEvent = errors.New("no legal occupation event exists")

	// ErrSiteOutOfRange is returned when an event references a site index
	// outside the bound configuration.
	ErrSiteOutOfRange = errors.New("event site index out of range")
)

// GeneratorPhase is the OccEventGenerator state machine phase.
type GeneratorPhase int

const (
	// PhaseIdle means no proposal is pending.
	PhaseIdle GeneratorPhase = iota
	// PhaseProposed means Propose succeeded and Apply may commit it.
	PhaseProposed
)

// OccEventGenerator proposes candidate occupation events and applies
// accepted ones to the bound state's configuration. Implementations are a
// state machine: SetState resets to Idle and invalidates any pending
// proposal; Propose transitions Idle -> Proposed; Apply commits the pending
// event, updates any occupant tracking, and returns to Idle.
type OccEventGenerator interface {
	// SetState binds the generator to a state and resets to Idle.
	SetState(s *State) error

	// Propose selects a legal OccEvent using the given random source and
	// transitions to Proposed. The returned event is owned by the
	// generator and valid until the next SetState/Propose/Apply.
	Propose(random *RandomSource) (*OccEvent, error)

	// Apply commits the event to the bound state's configuration. The
	// event must be the one returned by the last Propose.
	Apply(event *OccEvent) error
}

// checkEventSites validates that every site index in the event is within
// the configuration. Shared by generator implementations.
func checkEventSites(event *OccEvent, config Configuration) error {
	n := config.NSites()
	for _, l := range event.LinearSiteIndex {
		if l < 0 || l >= n {
			return fmt.Errorf("%w: site %d, n_sites %d", ErrSiteOutOfRange, l, n)
		}
	}
	return nil
}
