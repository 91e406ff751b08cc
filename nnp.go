// Package nnp provides common tools for working with neural network
// potentials: geometry manipulation under periodic boundary conditions,
// rotation math, numerical Hessians with vibrational analysis, and
// molecular dynamics.
//
// The subpackages do the actual work; this package defines the types they
// share. A potential energy surface is anything implementing Potential, and
// the structure it is evaluated on is a System.
package nnp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp/pbc"
)

// ErrDimensionMismatch is returned when species, coordinates, or masses
// disagree about the number of atoms.
var ErrDimensionMismatch = errors.New("nnp: dimension mismatch")

// System is a collection of atoms, optionally inside a periodic cell.
type System struct {
	// Species holds one chemical symbol per atom.
	Species []string

	// Coordinates is an n x 3 matrix of cartesian positions, one row per
	// atom, in the same order as Species.
	Coordinates *mat.Dense

	// Cell defines the unit cell. It may be nil for isolated systems; it
	// must be set when any component of PBC is true.
	Cell *pbc.Cell

	// PBC stores, per cell vector, whether periodic boundary conditions
	// are enabled along that direction.
	PBC [3]bool
}

// NumAtoms returns the number of atoms in the system.
func (s System) NumAtoms() int {
	if s.Coordinates == nil {
		return 0
	}
	n, _ := s.Coordinates.Dims()
	return n
}

// Periodic reports whether any direction has periodic boundaries enabled.
func (s System) Periodic() bool {
	return s.PBC[0] || s.PBC[1] || s.PBC[2]
}

// Validate checks internal consistency of the system.
func (s System) Validate() error {
	if s.Coordinates == nil {
		return fmt.Errorf("%w: system has no coordinates", ErrDimensionMismatch)
	}
	n, c := s.Coordinates.Dims()
	if c != 3 {
		return fmt.Errorf("%w: coordinates must have 3 columns, got %d", ErrDimensionMismatch, c)
	}
	if s.Species != nil && len(s.Species) != n {
		return fmt.Errorf("%w: %d species for %d atoms", ErrDimensionMismatch, len(s.Species), n)
	}
	if s.Periodic() && s.Cell == nil {
		return errors.New("nnp: periodic boundaries enabled but no cell set")
	}
	return nil
}

// WithCoordinates returns a shallow copy of the system with the given
// coordinate matrix in place of the original one.
func (s System) WithCoordinates(coordinates *mat.Dense) System {
	s.Coordinates = coordinates
	return s
}

// Clone returns a copy of the system with its own coordinate storage.
func (s System) Clone() System {
	if s.Coordinates != nil {
		var c mat.Dense
		c.CloneFrom(s.Coordinates)
		s.Coordinates = &c
	}
	s.Species = append([]string(nil), s.Species...)
	if s.Cell != nil {
		cell := *s.Cell
		s.Cell = &cell
	}
	return s
}

// Potential is a potential energy surface. Energy returns the potential
// energy of the system; implementations choose their own unit system, the
// reference potentials in package md use eV and angstroms.
type Potential interface {
	Energy(sys System) (float64, error)
}

// ForceProvider is implemented by potentials that can produce analytic
// forces. Consumers such as vib.Forces prefer it over numerical
// differentiation when available.
type ForceProvider interface {
	Forces(sys System) (*mat.Dense, error)
}
