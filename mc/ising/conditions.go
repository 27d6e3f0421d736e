package ising

import (
	"fmt"

	"github.com/lattice-mc/lattice-mc/mc"
)

// SemiGrandCanonicalConditions hold the temperature and the exchange
// potential conjugate to the parametric composition. Immutable during a
// run; replace the State's conditions between runs to change them.
type SemiGrandCanonicalConditions struct {
	temperature       float64
	exchangePotential []float64
	beta              float64
}

// NewSemiGrandCanonicalConditions validates and builds conditions.
func NewSemiGrandCanonicalConditions(temperature float64, exchangePotential []float64) (*SemiGrandCanonicalConditions, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("temperature must be positive, got %v", temperature)
	}
	if len(exchangePotential) == 0 {
		return nil, fmt.Errorf("exchange potential must have at least one component")
	}
	mu := make([]float64, len(exchangePotential))
	copy(mu, exchangePotential)
	return &SemiGrandCanonicalConditions{
		temperature:       temperature,
		exchangePotential: mu,
		beta:              1.0 / (mc.KB * temperature),
	}, nil
}

// Temperature implements mc.Conditions.
func (c *SemiGrandCanonicalConditions) Temperature() float64 { return c.temperature }

// Beta implements mc.Conditions.
func (c *SemiGrandCanonicalConditions) Beta() float64 { return c.beta }

// ExchangePotential returns the exchange potential vector.
func (c *SemiGrandCanonicalConditions) ExchangePotential() []float64 {
	mu := make([]float64, len(c.exchangePotential))
	copy(mu, c.exchangePotential)
	return mu
}

// ToValueMap implements mc.Conditions: {"temperature": T,
// "exchange_potential": [mu...]}.
func (c *SemiGrandCanonicalConditions) ToValueMap() mc.ValueMap {
	return mc.ValueMap{
		"temperature":        mc.Scalar(c.temperature),
		"exchange_potential": mc.Vector(c.exchangePotential),
	}
}

// ConditionsFromValueMap rebuilds conditions from the canonical exchange
// form. A missing required value is a configuration error.
func ConditionsFromValueMap(m mc.ValueMap) (*SemiGrandCanonicalConditions, error) {
	temperature, err := m.Scalar("temperature")
	if err != nil {
		return nil, err
	}
	mu, err := m.Vector("exchange_potential")
	if err != nil {
		return nil, err
	}
	return NewSemiGrandCanonicalConditions(temperature, mu)
}
