package md

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
)

// LennardJones is a 12-6 pair potential with analytic forces. It stands in
// for a neural network potential in tests and in the CLI. Energies are in
// units of Epsilon and distances in units of Sigma; with Epsilon in eV and
// Sigma in angstroms it plugs into the rest of the module unchanged.
//
// Under periodic boundary conditions the minimum image convention is
// applied, so Cutoff should be at most half the shortest cell width.
type LennardJones struct {
	Epsilon float64
	Sigma   float64

	// Cutoff truncates the interaction beyond this distance. Zero means
	// no cutoff.
	Cutoff float64
}

var _ nnp.ForceProvider = LennardJones{}

func (lj LennardJones) validate() error {
	if lj.Epsilon <= 0 || lj.Sigma <= 0 {
		return fmt.Errorf("md: lennard-jones requires positive epsilon and sigma, got eps=%g sigma=%g", lj.Epsilon, lj.Sigma)
	}
	return nil
}

// Energy returns the total pair energy of the system.
func (lj LennardJones) Energy(sys nnp.System) (float64, error) {
	var total float64
	err := lj.eachPair(sys, func(_, _ int, _ [3]float64, r2 float64) {
		sr2 := lj.Sigma * lj.Sigma / r2
		s6 := sr2 * sr2 * sr2
		total += 4 * lj.Epsilon * (s6*s6 - s6)
	})
	return total, err
}

// Forces returns the analytic forces, an n x 3 matrix.
func (lj LennardJones) Forces(sys nnp.System) (*mat.Dense, error) {
	forces := mat.NewDense(sys.NumAtoms(), 3, nil)
	err := lj.eachPair(sys, func(i, j int, d [3]float64, r2 float64) {
		sr2 := lj.Sigma * lj.Sigma / r2
		s6 := sr2 * sr2 * sr2
		// d points from atom i to atom j.
		factor := 24 * lj.Epsilon * (2*s6*s6 - s6) / r2
		for k := 0; k < 3; k++ {
			forces.Set(j, k, forces.At(j, k)+factor*d[k])
			forces.Set(i, k, forces.At(i, k)-factor*d[k])
		}
	})
	if err != nil {
		return nil, err
	}
	return forces, nil
}

// eachPair visits every interacting pair once, passing the minimum-image
// displacement from i to j and its squared length.
func (lj LennardJones) eachPair(sys nnp.System, fn func(i, j int, d [3]float64, r2 float64)) error {
	if err := lj.validate(); err != nil {
		return err
	}
	if err := sys.Validate(); err != nil {
		return err
	}
	var inv *mat.Dense
	if sys.Periodic() {
		var err error
		inv, err = sys.Cell.Inverse()
		if err != nil {
			return err
		}
	}
	cut2 := lj.Cutoff * lj.Cutoff
	n := sys.NumAtoms()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d [3]float64
			for k := 0; k < 3; k++ {
				d[k] = sys.Coordinates.At(j, k) - sys.Coordinates.At(i, k)
			}
			if inv != nil {
				d = minimumImage(d, sys, inv)
			}
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 == 0 {
				return fmt.Errorf("md: atoms %d and %d coincide", i, j)
			}
			if lj.Cutoff > 0 && r2 > cut2 {
				continue
			}
			fn(i, j, d, r2)
		}
	}
	return nil
}

// minimumImage maps a displacement to its nearest periodic image by rounding
// its fractional components on the periodic axes.
func minimumImage(d [3]float64, sys nnp.System, inv *mat.Dense) [3]float64 {
	var frac [3]float64
	for k := 0; k < 3; k++ {
		frac[k] = d[0]*inv.At(0, k) + d[1]*inv.At(1, k) + d[2]*inv.At(2, k)
	}
	for k := 0; k < 3; k++ {
		if sys.PBC[k] {
			frac[k] -= math.Round(frac[k])
		}
	}
	cell := *sys.Cell
	var out [3]float64
	for k := 0; k < 3; k++ {
		out[k] = frac[0]*cell[0][k] + frac[1]*cell[1][k] + frac[2]*cell[2][k]
	}
	return out
}
