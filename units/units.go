// Package units defines the natural unit system of this module and a few
// conversions. Following the ASE convention, energies are in electronvolts,
// lengths in angstroms, and masses in atomic mass units; the derived time
// unit is then Angstrom*sqrt(amu/eV), about 10.18 fs.
package units

import "math"

// Base units. Quantities expressed in the natural system are multiples of
// these; e.g. a timestep of one femtosecond is 1*Fs.
const (
	Angstrom = 1.0
	EV       = 1.0
	AMU      = 1.0

	// Fs is one femtosecond in natural time units.
	Fs = 0.09822694750253231

	// KB is the Boltzmann constant in eV per kelvin.
	KB = 8.617333262e-5
)

// wavenumberFactor converts an angular frequency in sqrt(eV/(amu*A^2)) to a
// spectroscopic wavenumber in cm^-1: omega / (2*pi*c).
const wavenumberFactor = 521.4708336735473

// ToWavenumber converts an angular frequency in natural units to cm^-1.
// Negative frequencies (imaginary modes) keep their sign.
func ToWavenumber(omega float64) float64 {
	return omega * wavenumberFactor
}

// Temperature returns the instantaneous temperature in kelvin for a given
// kinetic energy (in eV) and number of unconstrained degrees of freedom.
func Temperature(kineticEnergy float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 0
	}
	return 2 * kineticEnergy / (float64(degreesOfFreedom) * KB)
}

// ThermalSigma returns the standard deviation of a velocity component for
// mass m (amu) at temperature t (kelvin): sqrt(kB*T/m).
func ThermalSigma(m, t float64) float64 {
	return math.Sqrt(KB * t / m)
}
