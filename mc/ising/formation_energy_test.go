package ising

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-mc/lattice-mc/mc"
)

func newTestState(t *testing.T, rows, cols, fill int, temperature float64, mu []float64) *mc.State {
	t.Helper()
	config, err := NewConfiguration(rows, cols, fill)
	require.NoError(t, err)
	conditions, err := NewSemiGrandCanonicalConditions(temperature, mu)
	require.NoError(t, err)
	return mc.NewState(config, conditions)
}

func TestFormationEnergy_FullyOrdered(t *testing.T) {
	state := newTestState(t, 25, 25, 1, 2000, []float64{0})
	energy := NewFormationEnergy(0.1)
	require.NoError(t, energy.SetState(state))

	// Each of the n sites owns 2 bonds (down, right); all aligned.
	assert.InDelta(t, -2.0*625*0.1, energy.PerSupercell().Float(), 1e-12)
	assert.InDelta(t, -0.2, energy.PerUnitcell().Float(), 1e-12)
}

func TestFormationEnergy_SignConvention(t *testing.T) {
	// Antialigned fill via a checkerboard on an even lattice: every bond
	// contributes +J instead of -J.
	state := newTestState(t, 4, 4, 1, 2000, []float64{0})
	config := state.Configuration.(*Configuration)
	for l := 0; l < config.NSites(); l++ {
		row, col := l/4, l%4
		if (row+col)%2 == 1 {
			config.SetOcc(l, -1)
		}
	}
	energy := NewFormationEnergy(0.1)
	require.NoError(t, energy.SetState(state))
	assert.InDelta(t, 2.0*16*0.1, energy.PerSupercell().Float(), 1e-12)
}

func TestFormationEnergy_SingleFlipDelta(t *testing.T) {
	state := newTestState(t, 25, 25, 1, 2000, []float64{0})
	energy := NewFormationEnergy(0.1)
	require.NoError(t, energy.SetState(state))

	// Flipping one aligned spin breaks 4 bonds: delta = 8J.
	delta := energy.OccDeltaPerSupercell([]int{7}, []int{-1})
	assert.InDelta(t, 0.8, delta.Float(), 1e-12)

	// A no-op event has zero delta.
	assert.Equal(t, 0.0, energy.OccDeltaPerSupercell([]int{7}, []int{1}).Float())
}

func TestFormationEnergy_DeltaMatchesRecompute(t *testing.T) {
	state := newTestState(t, 8, 8, 1, 2000, []float64{0})
	config := state.Configuration.(*Configuration)
	energy := NewFormationEnergy(0.1)
	require.NoError(t, energy.SetState(state))

	random := mc.NewRandomSource(17)
	// Roughen the configuration first.
	for i := 0; i < 30; i++ {
		l := random.UniformInt(config.NSites())
		config.SetOcc(l, -config.Occ(l))
	}

	apply := func(sites, values []int) {
		config.SetMultiOcc(sites, values)
	}

	for i := 0; i < 500; i++ {
		// Alternate single flips and two-site events, including adjacent
		// pairs whose shared bond must be counted exactly once.
		var sites, values []int
		if i%2 == 0 {
			l := random.UniformInt(config.NSites())
			sites = []int{l}
			values = []int{-config.Occ(l)}
		} else {
			a := random.UniformInt(config.NSites())
			b := config.Neighbors(a, make([]int, 4))[random.UniformInt(4)]
			if a == b {
				continue
			}
			sites = []int{a, b}
			values = []int{-config.Occ(a), -config.Occ(b)}
		}

		before := energy.PerSupercell().Float()
		delta := energy.OccDeltaPerSupercell(sites, values).Float()
		apply(sites, values)
		after := energy.PerSupercell().Float()
		require.InDelta(t, after-before, delta, 1e-10)
	}
}

func TestFormationEnergy_RequiresIsingConfiguration(t *testing.T) {
	conditions, err := NewSemiGrandCanonicalConditions(300, []float64{0})
	require.NoError(t, err)
	state := mc.NewState(nonIsingConfig{}, conditions)
	assert.Error(t, NewFormationEnergy(0.1).SetState(state))
}

// nonIsingConfig is a foreign mc.Configuration used to exercise the
// calculator type checks.
type nonIsingConfig struct{}

func (nonIsingConfig) NSites() int             { return 1 }
func (nonIsingConfig) NVariableSites() int     { return 1 }
func (nonIsingConfig) NUnitCells() int         { return 1 }
func (nonIsingConfig) Occ(l int) int           { return 0 }
func (nonIsingConfig) SetOcc(l, v int)         {}
func (nonIsingConfig) SetMultiOcc(s, v []int)  {}
func (nonIsingConfig) Occupation() []int       { return []int{0} }
func (nonIsingConfig) ToValueMap() mc.ValueMap { return mc.ValueMap{} }
