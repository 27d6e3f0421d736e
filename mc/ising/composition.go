package ising

import (
	"fmt"

	"github.com/lattice-mc/lattice-mc/mc"
)

// Composition computes the parametric composition of the spin lattice:
// per-supercell, the number of +1 sites; per-unitcell, the +1 site
// fraction x in [0, 1]. The value is a one-component vector, matching the
// one-component exchange potential.
type Composition struct {
	config *Configuration
}

// NewComposition creates a composition calculator.
func NewComposition() *Composition {
	return &Composition{}
}

// SetState implements mc.PropertyCalculator.
func (c *Composition) SetState(s *mc.State) error {
	config, ok := s.Configuration.(*Configuration)
	if !ok {
		return fmt.Errorf("composition calculator requires an ising.Configuration, got %T", s.Configuration)
	}
	c.config = config
	return nil
}

// PerSupercell implements mc.PropertyCalculator.
func (c *Composition) PerSupercell() mc.Value {
	count := 0
	for l := 0; l < c.config.NSites(); l++ {
		if c.config.Occ(l) == 1 {
			count++
		}
	}
	return mc.Vector([]float64{float64(count)})
}

// PerUnitcell implements mc.PropertyCalculator.
func (c *Composition) PerUnitcell() mc.Value {
	return c.PerSupercell().Scale(1.0 / float64(c.config.NUnitCells()))
}

// OccDeltaPerSupercell implements mc.PropertyCalculator.
func (c *Composition) OccDeltaPerSupercell(sites []int, newOcc []int) mc.Value {
	delta := 0.0
	for i, l := range sites {
		if newOcc[i] == 1 && c.config.Occ(l) != 1 {
			delta++
		}
		if newOcc[i] != 1 && c.config.Occ(l) == 1 {
			delta--
		}
	}
	return mc.Vector([]float64{delta})
}
