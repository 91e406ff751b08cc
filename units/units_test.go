package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFs(t *testing.T) {
	// One natural time unit is about 10.18 fs.
	assert.InDelta(t, 10.18, 1/Fs, 0.01)
}

func TestToWavenumber(t *testing.T) {
	// An angular frequency of 1 sqrt(eV/(amu*A^2)) is about 521.47 cm^-1.
	assert.InDelta(t, 521.47, ToWavenumber(1), 0.01)
	assert.InDelta(t, -521.47, ToWavenumber(-1), 0.01)
	assert.Zero(t, ToWavenumber(0))
}

func TestTemperature(t *testing.T) {
	// kB*T/2 per degree of freedom.
	ke := 1.5 * KB * 300
	assert.InDelta(t, 300, Temperature(ke, 3), 1e-9)
	assert.Zero(t, Temperature(1, 0))
}

func TestThermalSigma(t *testing.T) {
	sigma := ThermalSigma(39.948, 300)
	assert.InDelta(t, math.Sqrt(KB*300/39.948), sigma, 1e-15)
	assert.Zero(t, ThermalSigma(1, 0))
}
