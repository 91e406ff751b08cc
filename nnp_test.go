package nnp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp/pbc"
)

func TestSystemValidate(t *testing.T) {
	cell := pbc.CubicCell(10)
	tests := []struct {
		name    string
		sys     System
		wantErr bool
	}{
		{"minimal", System{Coordinates: mat.NewDense(2, 3, nil)}, false},
		{"with species", System{Species: []string{"H", "H"}, Coordinates: mat.NewDense(2, 3, nil)}, false},
		{"periodic with cell", System{Coordinates: mat.NewDense(1, 3, nil), Cell: &cell, PBC: [3]bool{true, true, true}}, false},
		{"no coordinates", System{}, true},
		{"wrong columns", System{Coordinates: mat.NewDense(2, 2, nil)}, true},
		{"species mismatch", System{Species: []string{"H"}, Coordinates: mat.NewDense(2, 3, nil)}, true},
		{"periodic without cell", System{Coordinates: mat.NewDense(1, 3, nil), PBC: [3]bool{false, true, false}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sys.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSystemClone(t *testing.T) {
	cell := pbc.CubicCell(5)
	sys := System{
		Species:     []string{"H", "O"},
		Coordinates: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		Cell:        &cell,
		PBC:         [3]bool{true, false, true},
	}
	clone := sys.Clone()
	require.Equal(t, sys.PBC, clone.PBC)

	clone.Coordinates.Set(0, 0, 99)
	clone.Species[0] = "C"
	clone.Cell[0][0] = 99

	assert.Equal(t, 1.0, sys.Coordinates.At(0, 0))
	assert.Equal(t, "H", sys.Species[0])
	assert.Equal(t, 5.0, sys.Cell[0][0])
}

func TestSystemAccessors(t *testing.T) {
	sys := System{Coordinates: mat.NewDense(4, 3, nil)}
	assert.Equal(t, 4, sys.NumAtoms())
	assert.False(t, sys.Periodic())
	assert.Equal(t, 0, System{}.NumAtoms())

	sys.PBC[2] = true
	assert.True(t, sys.Periodic())
}

func TestWithCoordinates(t *testing.T) {
	sys := System{Species: []string{"H"}, Coordinates: mat.NewDense(1, 3, nil)}
	replacement := mat.NewDense(1, 3, []float64{1, 1, 1})

	swapped := sys.WithCoordinates(replacement)
	assert.Equal(t, replacement, swapped.Coordinates)
	assert.Equal(t, sys.Species, swapped.Species)
	assert.Equal(t, 0.0, sys.Coordinates.At(0, 0), "original should be untouched")
}
