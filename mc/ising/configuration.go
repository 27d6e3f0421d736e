// Package ising implements the square-lattice Ising model variant of the
// mc engine capability sets: a periodic 2D spin configuration, semi-grand
// canonical conditions, property calculators for formation energy,
// parametric composition and the generalized potential, and event
// generators for spin flips (semi-grand canonical) and spin swaps
// (canonical).
package ising

import (
	"fmt"

	"github.com/lattice-mc/lattice-mc/mc"
)

// Configuration is a periodic 2D square lattice of ±1 spins with row-major
// linear site indexing. Every site is variable and every site is one unit
// cell.
type Configuration struct {
	rows, cols int
	occupation []int
}

// NewConfiguration creates a rows x cols lattice with every site set to
// fill (must be +1 or -1).
func NewConfiguration(rows, cols, fill int) (*Configuration, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("lattice shape must be positive, got %dx%d", rows, cols)
	}
	if fill != 1 && fill != -1 {
		return nil, fmt.Errorf("fill value must be +1 or -1, got %d", fill)
	}
	occ := make([]int, rows*cols)
	for i := range occ {
		occ[i] = fill
	}
	return &Configuration{rows: rows, cols: cols, occupation: occ}, nil
}

// Shape returns (rows, cols).
func (c *Configuration) Shape() (int, int) { return c.rows, c.cols }

// NSites implements mc.Configuration.
func (c *Configuration) NSites() int { return len(c.occupation) }

// NVariableSites implements mc.Configuration; every site may flip.
func (c *Configuration) NVariableSites() int { return len(c.occupation) }

// NUnitCells implements mc.Configuration; one site per unit cell.
func (c *Configuration) NUnitCells() int { return len(c.occupation) }

// Occ implements mc.Configuration.
func (c *Configuration) Occ(l int) int { return c.occupation[l] }

// SetOcc implements mc.Configuration. Panics on a non-spin value; writing
// anything but ±1 is a caller bug.
func (c *Configuration) SetOcc(l int, value int) {
	if value != 1 && value != -1 {
		panic(fmt.Sprintf("ising: occupant value must be +1 or -1, got %d", value))
	}
	c.occupation[l] = value
}

// SetMultiOcc implements mc.Configuration.
func (c *Configuration) SetMultiOcc(sites []int, values []int) {
	for i, l := range sites {
		c.SetOcc(l, values[i])
	}
}

// Occupation implements mc.Configuration.
func (c *Configuration) Occupation() []int {
	cp := make([]int, len(c.occupation))
	copy(cp, c.occupation)
	return cp
}

// Neighbors writes the four periodic nearest-neighbor site indices of l
// into buf (which must have length >= 4) and returns it.
func (c *Configuration) Neighbors(l int, buf []int) []int {
	row, col := l/c.cols, l%c.cols
	up := (row - 1 + c.rows) % c.rows
	down := (row + 1) % c.rows
	left := (col - 1 + c.cols) % c.cols
	right := (col + 1) % c.cols
	buf[0] = up*c.cols + col
	buf[1] = down*c.cols + col
	buf[2] = row*c.cols + left
	buf[3] = row*c.cols + right
	return buf[:4]
}

// ToValueMap implements mc.Configuration: {"shape": [rows, cols],
// "occupation": [...]}. FromValueMap round-trips exactly.
func (c *Configuration) ToValueMap() mc.ValueMap {
	occ := make([]float64, len(c.occupation))
	for i, v := range c.occupation {
		occ[i] = float64(v)
	}
	return mc.ValueMap{
		"shape":      mc.Vector([]float64{float64(c.rows), float64(c.cols)}),
		"occupation": mc.Vector(occ),
	}
}

// ConfigurationFromValueMap rebuilds a Configuration from its canonical
// exchange form.
func ConfigurationFromValueMap(m mc.ValueMap) (*Configuration, error) {
	shape, err := m.Vector("shape")
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("shape must have 2 entries, got %d", len(shape))
	}
	occ, err := m.Vector("occupation")
	if err != nil {
		return nil, err
	}
	rows, cols := int(shape[0]), int(shape[1])
	config, err := NewConfiguration(rows, cols, 1)
	if err != nil {
		return nil, err
	}
	if len(occ) != rows*cols {
		return nil, fmt.Errorf("occupation has %d entries, want %d", len(occ), rows*cols)
	}
	for l, x := range occ {
		// Exact comparison: a non-integral entry is invalid input, not a
		// value to round.
		if x != 1 && x != -1 {
			return nil, fmt.Errorf("occupation[%d] must be +1 or -1, got %v", l, x)
		}
		config.occupation[l] = int(x)
	}
	return config, nil
}
