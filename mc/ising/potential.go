package ising

import (
	"fmt"

	"github.com/lattice-mc/lattice-mc/mc"
)

// SemiGrandCanonicalPotential is the generalized potential driving
// acceptance in the semi-grand canonical ensemble:
//
//	E_sgc = E_formation - n_unitcells * (mu . x)
//
// It composes the formation energy and composition calculators additively;
// its values and deltas are scalar.
type SemiGrandCanonicalPotential struct {
	formationEnergy *FormationEnergy
	composition     *Composition
	conditions      *SemiGrandCanonicalConditions
}

// NewSemiGrandCanonicalPotential composes the two property calculators.
func NewSemiGrandCanonicalPotential(formationEnergy *FormationEnergy, composition *Composition) *SemiGrandCanonicalPotential {
	return &SemiGrandCanonicalPotential{
		formationEnergy: formationEnergy,
		composition:     composition,
	}
}

// FormationEnergyCalculator returns the composed formation energy term.
func (p *SemiGrandCanonicalPotential) FormationEnergyCalculator() *FormationEnergy {
	return p.formationEnergy
}

// CompositionCalculator returns the composed composition term.
func (p *SemiGrandCanonicalPotential) CompositionCalculator() *Composition {
	return p.composition
}

// SetState implements mc.PropertyCalculator, binding both composed
// calculators and the conditions.
func (p *SemiGrandCanonicalPotential) SetState(s *mc.State) error {
	conditions, ok := s.Conditions.(*SemiGrandCanonicalConditions)
	if !ok {
		return fmt.Errorf("semi-grand canonical potential requires SemiGrandCanonicalConditions, got %T", s.Conditions)
	}
	if err := p.formationEnergy.SetState(s); err != nil {
		return err
	}
	if err := p.composition.SetState(s); err != nil {
		return err
	}
	p.conditions = conditions
	return nil
}

// PerSupercell implements mc.PropertyCalculator.
func (p *SemiGrandCanonicalPotential) PerSupercell() mc.Value {
	ef := p.formationEnergy.PerSupercell().Float()
	nx := p.composition.PerSupercell()
	mu := mc.Vector(p.conditions.ExchangePotential())
	return mc.Scalar(ef - mu.Dot(nx))
}

// PerUnitcell implements mc.PropertyCalculator.
func (p *SemiGrandCanonicalPotential) PerUnitcell() mc.Value {
	return p.PerSupercell().Scale(1.0 / float64(p.composition.config.NUnitCells()))
}

// OccDeltaPerSupercell implements mc.PropertyCalculator.
func (p *SemiGrandCanonicalPotential) OccDeltaPerSupercell(sites []int, newOcc []int) mc.Value {
	dEf := p.formationEnergy.OccDeltaPerSupercell(sites, newOcc).Float()
	dNx := p.composition.OccDeltaPerSupercell(sites, newOcc)
	mu := mc.Vector(p.conditions.ExchangePotential())
	return mc.Scalar(dEf - mu.Dot(dNx))
}
