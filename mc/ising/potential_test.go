package ising

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-mc/lattice-mc/mc"
)

func newBoundPotential(t *testing.T, state *mc.State, j float64) *SemiGrandCanonicalPotential {
	t.Helper()
	potential := NewSemiGrandCanonicalPotential(NewFormationEnergy(j), NewComposition())
	require.NoError(t, potential.SetState(state))
	return potential
}

func TestPotential_FullyOrderedValue(t *testing.T) {
	// E_sgc = Ef - mu . Nx; fully ordered: Ef = -2*n*J and Nx = n.
	state := newTestState(t, 4, 4, 1, 2000, []float64{0.4})
	potential := newBoundPotential(t, state, 0.1)

	want := -2.0*16*0.1 - 0.4*16
	assert.InDelta(t, want, potential.PerSupercell().Float(), 1e-12)
	assert.InDelta(t, want/16, potential.PerUnitcell().Float(), 1e-12)
}

func TestPotential_FlipDelta(t *testing.T) {
	// From the ordered state: dEf = 8J and dNx = -1, so delta = 8J + mu.
	state := newTestState(t, 4, 4, 1, 2000, []float64{0.4})
	potential := newBoundPotential(t, state, 0.1)

	delta := potential.OccDeltaPerSupercell([]int{5}, []int{-1})
	assert.InDelta(t, 0.8+0.4, delta.Float(), 1e-12)
}

func TestPotential_ZeroExchangePotentialReducesToFormationEnergy(t *testing.T) {
	state := newTestState(t, 6, 6, 1, 2000, []float64{0})
	potential := newBoundPotential(t, state, 0.1)
	energy := potential.FormationEnergyCalculator()

	assert.Equal(t, energy.PerSupercell().Float(), potential.PerSupercell().Float())
	assert.Equal(t,
		energy.OccDeltaPerSupercell([]int{0}, []int{-1}).Float(),
		potential.OccDeltaPerSupercell([]int{0}, []int{-1}).Float())
}

func TestPotential_DeltaMatchesRecompute(t *testing.T) {
	state := newTestState(t, 6, 6, 1, 2000, []float64{0.3})
	config := state.Configuration.(*Configuration)
	potential := newBoundPotential(t, state, 0.1)

	random := mc.NewRandomSource(23)
	for i := 0; i < 300; i++ {
		l := random.UniformInt(config.NSites())
		sites := []int{l}
		values := []int{-config.Occ(l)}

		before := potential.PerSupercell().Float()
		delta := potential.OccDeltaPerSupercell(sites, values).Float()
		config.SetMultiOcc(sites, values)
		after := potential.PerSupercell().Float()
		require.InDelta(t, after-before, delta, 1e-10)
	}
}

func TestPotential_RequiresSemiGrandCanonicalConditions(t *testing.T) {
	config, err := NewConfiguration(2, 2, 1)
	require.NoError(t, err)
	state := mc.NewState(config, fixedBetaConditions{})
	potential := NewSemiGrandCanonicalPotential(NewFormationEnergy(0.1), NewComposition())
	assert.Error(t, potential.SetState(state))
}

// fixedBetaConditions is a foreign mc.Conditions used to exercise the
// potential's type check.
type fixedBetaConditions struct{}

func (fixedBetaConditions) Temperature() float64    { return 300 }
func (fixedBetaConditions) Beta() float64           { return 1 }
func (fixedBetaConditions) ToValueMap() mc.ValueMap { return mc.ValueMap{} }
