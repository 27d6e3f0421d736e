package ising

import (
	"fmt"

	"github.com/lattice-mc/lattice-mc/mc"
)

// FlipGenerator proposes semi-grand canonical events: a uniformly chosen
// site has its spin negated. State machine per mc.OccEventGenerator:
// SetState resets to Idle, Propose transitions to Proposed, Apply commits
// and returns to Idle.
type FlipGenerator struct {
	state *mc.State
	event mc.OccEvent
	phase mc.GeneratorPhase
}

// NewFlipGenerator creates an unbound flip generator.
func NewFlipGenerator() *FlipGenerator {
	return &FlipGenerator{
		event: mc.OccEvent{
			LinearSiteIndex: make([]int, 1),
			NewOcc:          make([]int, 1),
		},
	}
}

// SetState implements mc.OccEventGenerator.
func (g *FlipGenerator) SetState(s *mc.State) error {
	if _, ok := s.Configuration.(*Configuration); !ok {
		return fmt.Errorf("flip generator requires an ising.Configuration, got %T", s.Configuration)
	}
	g.state = s
	g.phase = mc.PhaseIdle
	return nil
}

// Propose implements mc.OccEventGenerator.
func (g *FlipGenerator) Propose(random *mc.RandomSource) (*mc.OccEvent, error) {
	if g.state == nil {
		return nil, mc.ErrUnboundGenerator
	}
	config := g.state.Configuration
	n := config.NVariableSites()
	if n == 0 {
		return nil, mc.ErrNoLegalEvent
	}
	l := random.UniformInt(n)
	g.event.LinearSiteIndex[0] = l
	g.event.NewOcc[0] = -config.Occ(l)
	g.phase = mc.PhaseProposed
	return &g.event, nil
}

// Apply implements mc.OccEventGenerator.
func (g *FlipGenerator) Apply(event *mc.OccEvent) error {
	if g.phase != mc.PhaseProposed {
		return mc.ErrNoProposal
	}
	if !sameEvent(event, &g.event) {
		return mc.ErrStaleEvent
	}
	g.state.Configuration.SetMultiOcc(event.LinearSiteIndex, event.NewOcc)
	g.phase = mc.PhaseIdle
	return nil
}

// SwapGenerator proposes canonical (composition-conserving) events: a
// uniformly chosen +1 site and a uniformly chosen -1 site exchange their
// spins. It keeps an mc.OccLocation current so partner choice is O(1).
type SwapGenerator struct {
	state    *mc.State
	location *mc.OccLocation
	event    mc.OccEvent
	phase    mc.GeneratorPhase
}

// NewSwapGenerator creates an unbound swap generator.
func NewSwapGenerator() *SwapGenerator {
	return &SwapGenerator{
		event: mc.OccEvent{
			LinearSiteIndex: make([]int, 2),
			NewOcc:          make([]int, 2),
		},
	}
}

// SetState implements mc.OccEventGenerator, rebuilding occupant tracking
// for the new configuration.
func (g *SwapGenerator) SetState(s *mc.State) error {
	if _, ok := s.Configuration.(*Configuration); !ok {
		return fmt.Errorf("swap generator requires an ising.Configuration, got %T", s.Configuration)
	}
	g.state = s
	g.location = mc.NewOccLocation(s.Configuration)
	g.phase = mc.PhaseIdle
	return nil
}

// Propose implements mc.OccEventGenerator. Fails with a proposal error if
// either spin population is empty (no legal swap exists).
func (g *SwapGenerator) Propose(random *mc.RandomSource) (*mc.OccEvent, error) {
	if g.state == nil {
		return nil, mc.ErrUnboundGenerator
	}
	up, err := g.location.ChooseSite(1, random)
	if err != nil {
		return nil, err
	}
	down, err := g.location.ChooseSite(-1, random)
	if err != nil {
		return nil, err
	}
	g.event.LinearSiteIndex[0] = up
	g.event.LinearSiteIndex[1] = down
	g.event.NewOcc[0] = -1
	g.event.NewOcc[1] = 1
	g.phase = mc.PhaseProposed
	return &g.event, nil
}

// Apply implements mc.OccEventGenerator, updating occupant tracking
// consistently with the configuration.
func (g *SwapGenerator) Apply(event *mc.OccEvent) error {
	if g.phase != mc.PhaseProposed {
		return mc.ErrNoProposal
	}
	if !sameEvent(event, &g.event) {
		return mc.ErrStaleEvent
	}
	g.state.Configuration.SetMultiOcc(event.LinearSiteIndex, event.NewOcc)
	g.location.Apply(event)
	g.phase = mc.PhaseIdle
	return nil
}

// sameEvent reports whether two events describe the same change.
func sameEvent(a, b *mc.OccEvent) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || len(a.LinearSiteIndex) != len(b.LinearSiteIndex) {
		return false
	}
	for i := range a.LinearSiteIndex {
		if a.LinearSiteIndex[i] != b.LinearSiteIndex[i] || a.NewOcc[i] != b.NewOcc[i] {
			return false
		}
	}
	return true
}
