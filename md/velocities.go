package md

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aiqm/nnp"
	"github.com/aiqm/nnp/units"
)

// MaxwellBoltzmann samples initial velocities for the given masses (amu) at
// a temperature in kelvin. The net momentum of the sample is removed, so
// the center of mass stays put. Pass a seeded source for reproducible runs;
// a nil source uses the global one.
func MaxwellBoltzmann(masses []float64, temperature float64, src rand.Source) (*mat.Dense, error) {
	if temperature < 0 {
		return nil, fmt.Errorf("md: temperature must be non-negative, got %g", temperature)
	}
	n := len(masses)
	if n == 0 {
		return nil, fmt.Errorf("%w: no masses given", nnp.ErrDimensionMismatch)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	velocities := mat.NewDense(n, 3, nil)
	for i, m := range masses {
		if m <= 0 {
			return nil, fmt.Errorf("md: mass of atom %d must be positive, got %g", i, m)
		}
		sigma := units.ThermalSigma(m, temperature)
		for k := 0; k < 3; k++ {
			velocities.Set(i, k, sigma*normal.Rand())
		}
	}
	removeDrift(velocities, masses)
	return velocities, nil
}

// removeDrift subtracts the center-of-mass velocity.
func removeDrift(velocities *mat.Dense, masses []float64) {
	var totalMass float64
	var p [3]float64
	for i, m := range masses {
		totalMass += m
		for k := 0; k < 3; k++ {
			p[k] += m * velocities.At(i, k)
		}
	}
	for i := range masses {
		for k := 0; k < 3; k++ {
			velocities.Set(i, k, velocities.At(i, k)-p[k]/totalMass)
		}
	}
}
