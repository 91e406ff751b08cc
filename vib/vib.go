// Package vib contains tools to compute Hessians and do vibrational
// analysis on a potential energy surface.
//
// The Hessian is obtained from the derivative of the forces with respect to
// the coordinates. Forces come from the potential itself when it implements
// nnp.ForceProvider, and from a central-difference gradient of the energy
// otherwise. For quadratic potentials the central difference of the forces
// reproduces the Hessian exactly up to round-off.
package vib

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
)

// ErrNotConverged is returned when the symmetric eigendecomposition of the
// mass-scaled Hessian fails.
var ErrNotConverged = errors.New("vib: eigendecomposition failed")

// DefaultStep is the displacement used for force differencing when Settings
// does not override it.
const DefaultStep = 1e-4

// Settings configures numerical differentiation. A nil *Settings uses
// defaults everywhere.
type Settings struct {
	// Step is the coordinate displacement for Hessian force differencing.
	Step float64
}

func (s *Settings) step() float64 {
	if s == nil || s.Step <= 0 {
		return DefaultStep
	}
	return s.Step
}

// Forces computes the forces acting on every atom, as an n x 3 matrix in the
// potential's units. Potentials implementing nnp.ForceProvider supply them
// analytically; otherwise the forces are the negative central-difference
// gradient of the energy.
func Forces(p nnp.Potential, sys nnp.System) (*mat.Dense, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if fp, ok := p.(nnp.ForceProvider); ok {
		return fp.Forces(sys)
	}
	n := sys.NumAtoms()
	x := flatten(sys.Coordinates)

	var evalErr error
	energyAt := func(x []float64) float64 {
		if evalErr != nil {
			return math.NaN()
		}
		e, err := p.Energy(sys.WithCoordinates(unflatten(x, n)))
		if err != nil {
			evalErr = err
			return math.NaN()
		}
		return e
	}
	grad := fd.Gradient(nil, energyAt, x, &fd.Settings{Formula: fd.Central})
	if evalErr != nil {
		return nil, fmt.Errorf("vib: energy evaluation failed: %w", evalErr)
	}
	forces := mat.NewDense(n, 3, grad)
	forces.Scale(-1, forces)
	return forces, nil
}

// Hessian computes the 3n x 3n matrix of second derivatives of the energy
// with respect to the cartesian coordinates, by central differences of the
// forces. The result is symmetrized.
func Hessian(p nnp.Potential, sys nnp.System, settings *Settings) (*mat.SymDense, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	n := sys.NumAtoms()
	dim := 3 * n
	h := settings.step()

	raw := mat.NewDense(dim, dim, nil)
	x := flatten(sys.Coordinates)
	displaced := make([]float64, dim)
	for i := 0; i < dim; i++ {
		copy(displaced, x)

		displaced[i] = x[i] + h
		fPlus, err := Forces(p, sys.WithCoordinates(unflatten(displaced, n)))
		if err != nil {
			return nil, err
		}
		displaced[i] = x[i] - h
		fMinus, err := Forces(p, sys.WithCoordinates(unflatten(displaced, n)))
		if err != nil {
			return nil, err
		}
		displaced[i] = x[i]

		// H[i][j] = -d F_j / d x_i
		plus := flatten(fPlus)
		minus := flatten(fMinus)
		for j := 0; j < dim; j++ {
			raw.Set(i, j, -(plus[j]-minus[j])/(2*h))
		}
	}

	hess := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			hess.SetSym(i, j, 0.5*(raw.At(i, j)+raw.At(j, i)))
		}
	}
	return hess, nil
}

// FreqsModes is the result of a vibrational analysis.
type FreqsModes struct {
	// AngularFrequencies holds one angular frequency per normal mode, in
	// ascending order of the underlying eigenvalue. For potentials in eV
	// and angstroms the unit is sqrt(eV/(amu*A^2)); see units.ToWavenumber.
	// Imaginary modes (negative eigenvalues) are reported as negative
	// frequencies.
	AngularFrequencies []float64

	// Modes holds the normal mode displacement of each atom, one atoms x 3
	// matrix per mode, in the same order as AngularFrequencies. The modes
	// are mass-unweighted and not normalized.
	Modes []*mat.Dense
}

// Analyze performs a vibrational analysis on a Hessian. The generalized
// eigenproblem H q = w^2 T q, with T the diagonal per-coordinate mass
// matrix, is reduced to a regular symmetric eigenproblem by Loewdin
// scaling: T^(-1/2) H T^(-1/2) q' = w^2 q'. Masses has one entry per atom.
func Analyze(masses []float64, hessian *mat.SymDense) (FreqsModes, error) {
	dim, _ := hessian.Dims()
	if dim%3 != 0 {
		return FreqsModes{}, fmt.Errorf("%w: hessian dimension %d is not a multiple of 3", nnp.ErrDimensionMismatch, dim)
	}
	atoms := dim / 3
	if len(masses) != atoms {
		return FreqsModes{}, fmt.Errorf("%w: %d masses for %d atoms", nnp.ErrDimensionMismatch, len(masses), atoms)
	}
	invSqrt := make([]float64, dim)
	for a, m := range masses {
		if m <= 0 {
			return FreqsModes{}, fmt.Errorf("vib: mass of atom %d must be positive, got %g", a, m)
		}
		s := 1 / math.Sqrt(m)
		invSqrt[3*a], invSqrt[3*a+1], invSqrt[3*a+2] = s, s, s
	}

	scaled := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			scaled.SetSym(i, j, hessian.At(i, j)*invSqrt[i]*invSqrt[j])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(scaled, true); !ok {
		return FreqsModes{}, ErrNotConverged
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	freqs := make([]float64, dim)
	modes := make([]*mat.Dense, dim)
	for k := 0; k < dim; k++ {
		if v := values[k]; v >= 0 {
			freqs[k] = math.Sqrt(v)
		} else {
			freqs[k] = -math.Sqrt(-v)
		}
		mode := mat.NewDense(atoms, 3, nil)
		for i := 0; i < dim; i++ {
			mode.Set(i/3, i%3, vectors.At(i, k)*invSqrt[i])
		}
		modes[k] = mode
	}
	return FreqsModes{AngularFrequencies: freqs, Modes: modes}, nil
}

func flatten(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i*c+j] = m.At(i, j)
		}
	}
	return out
}

func unflatten(x []float64, atoms int) *mat.Dense {
	return mat.NewDense(atoms, 3, append([]float64(nil), x...))
}
