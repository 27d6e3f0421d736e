package ising

import "github.com/lattice-mc/lattice-mc/mc"

// DefaultSamplingFunctions returns the standard sampled quantities of the
// semi-grand canonical Ising model, all per-unitcell:
//
//	potential_energy  - the generalized potential (scalar)
//	formation_energy  - the formation energy (scalar)
//	param_composition - the parametric composition (vector)
//
// The functions read through the given potential's composed calculators,
// which the driver binds to the run's state.
func DefaultSamplingFunctions(potential *SemiGrandCanonicalPotential) []mc.SamplingFunction {
	return []mc.SamplingFunction{
		mc.NewSamplingFunction(
			"potential_energy",
			"Semi-grand canonical potential energy per unit cell",
			1,
			func(s *mc.State) []float64 {
				return potential.PerUnitcell().Components()
			},
		),
		mc.NewSamplingFunction(
			"formation_energy",
			"Formation energy per unit cell",
			1,
			func(s *mc.State) []float64 {
				return potential.FormationEnergyCalculator().PerUnitcell().Components()
			},
		),
		mc.NewSamplingFunction(
			"param_composition",
			"Parametric composition per unit cell",
			1,
			func(s *mc.State) []float64 {
				return potential.CompositionCalculator().PerUnitcell().Components()
			},
		),
	}
}
