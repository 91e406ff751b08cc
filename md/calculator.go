// Package md provides tools to run molecular dynamics with a potential
// defined by any nnp.Potential implementation.
package md

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
	"github.com/aiqm/nnp/pbc"
	"github.com/aiqm/nnp/vib"
)

// ErrNoCell is returned when a stress calculation is requested for a system
// without a unit cell.
var ErrNoCell = errors.New("md: stress requires a unit cell")

// defaultStrainStep is the strain used for the stress finite difference.
const defaultStrainStep = 1e-6

// Properties selects what Calculate should produce besides the energy.
type Properties struct {
	Forces bool
	Stress bool
}

// Results holds the output of a Calculate call.
type Results struct {
	// Energy is the potential energy. FreeEnergy equals Energy; the
	// potentials here carry no electronic entropy term.
	Energy     float64
	FreeEnergy float64

	// Forces is an n x 3 matrix, set when requested.
	Forces *mat.Dense

	// Stress is the symmetric 3x3 stress tensor (energy per volume), set
	// when requested.
	Stress *mat.Dense
}

// Calculator evaluates a potential on a system, producing energy, forces,
// and stress. Before evaluation, atoms of periodic systems are wrapped into
// the central cell.
type Calculator struct {
	Potential nnp.Potential

	// Overwrite replaces the positions stored in the system with the
	// wrapped positions after mapping into the central cell.
	Overwrite bool

	// StrainStep overrides the finite-difference strain for stress.
	StrainStep float64
}

// NewCalculator returns a Calculator for the given potential.
func NewCalculator(p nnp.Potential) *Calculator {
	return &Calculator{Potential: p}
}

// Calculate evaluates the potential. The system is only mutated when
// Overwrite is set, and then only its coordinate matrix is replaced.
func (c *Calculator) Calculate(sys *nnp.System, want Properties) (Results, error) {
	if c.Potential == nil {
		return Results{}, errors.New("md: calculator has no potential")
	}
	if err := sys.Validate(); err != nil {
		return Results{}, err
	}

	work := *sys
	if sys.Periodic() {
		wrapped, err := pbc.MapToCentral(*sys.Cell, sys.Coordinates, sys.PBC)
		if err != nil {
			return Results{}, err
		}
		work = sys.WithCoordinates(wrapped)
		if c.Overwrite {
			sys.Coordinates = wrapped
		}
	}

	energy, err := c.Potential.Energy(work)
	if err != nil {
		return Results{}, fmt.Errorf("md: energy evaluation failed: %w", err)
	}
	res := Results{Energy: energy, FreeEnergy: energy}

	if want.Forces {
		forces, err := vib.Forces(c.Potential, work)
		if err != nil {
			return Results{}, err
		}
		res.Forces = forces
	}
	if want.Stress {
		stress, err := c.stress(work)
		if err != nil {
			return Results{}, err
		}
		res.Stress = stress
	}
	return res, nil
}

// stress computes the stress tensor as the derivative of the energy with
// respect to an infinitesimal scaling of coordinates and cell, divided by
// the cell volume. Each of the nine scaling components is central
// differenced and the result symmetrized.
func (c *Calculator) stress(sys nnp.System) (*mat.Dense, error) {
	if sys.Cell == nil {
		return nil, ErrNoCell
	}
	volume := sys.Cell.Volume()
	if volume == 0 {
		return nil, pbc.ErrSingularCell
	}
	delta := c.StrainStep
	if delta <= 0 {
		delta = defaultStrainStep
	}

	raw := mat.NewDense(3, 3, nil)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			plus, err := c.strainedEnergy(sys, a, b, delta)
			if err != nil {
				return nil, err
			}
			minus, err := c.strainedEnergy(sys, a, b, -delta)
			if err != nil {
				return nil, err
			}
			raw.Set(a, b, (plus-minus)/(2*delta)/volume)
		}
	}
	stress := mat.NewDense(3, 3, nil)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			stress.Set(a, b, 0.5*(raw.At(a, b)+raw.At(b, a)))
		}
	}
	return stress, nil
}

// strainedEnergy evaluates the energy with coordinates and cell transformed
// by a scaling matrix that is the identity plus delta at (a, b).
func (c *Calculator) strainedEnergy(sys nnp.System, a, b int, delta float64) (float64, error) {
	scaling := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	scaling.Set(a, b, scaling.At(a, b)+delta)

	n := sys.NumAtoms()
	coords := mat.NewDense(n, 3, nil)
	coords.Mul(sys.Coordinates, scaling)

	var cellM mat.Dense
	cellM.Mul(sys.Cell.Matrix(), scaling)
	cell, err := pbc.NewCell(&cellM)
	if err != nil {
		return 0, err
	}

	strained := sys
	strained.Coordinates = coords
	strained.Cell = &cell
	return c.Potential.Energy(strained)
}
