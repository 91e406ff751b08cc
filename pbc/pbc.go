// Package pbc contains tools to deal with periodic boundary conditions.
package pbc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularCell is returned when the three cell vectors do not span a
// three-dimensional volume and the cell matrix cannot be inverted.
var ErrSingularCell = errors.New("pbc: cell vectors are linearly dependent")

// Cell holds the three row vectors defining a unit cell:
//
//	[ x1 y1 z1 ]
//	[ x2 y2 z2 ]
//	[ x3 y3 z3 ]
type Cell [3][3]float64

// CubicCell returns a cell with three orthogonal vectors of length a.
func CubicCell(a float64) Cell {
	return Cell{{a, 0, 0}, {0, a, 0}, {0, 0, a}}
}

// OrthorhombicCell returns a cell with orthogonal vectors of lengths a, b, c.
func OrthorhombicCell(a, b, c float64) Cell {
	return Cell{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// NewCell builds a Cell from a 3x3 matrix of row vectors.
func NewCell(m mat.Matrix) (Cell, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return Cell{}, fmt.Errorf("pbc: cell matrix must be 3x3, got %dx%d", r, c)
	}
	var cell Cell
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cell[i][j] = m.At(i, j)
		}
	}
	return cell, nil
}

// Matrix returns the cell as a dense 3x3 matrix of row vectors.
func (c Cell) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		c[0][0], c[0][1], c[0][2],
		c[1][0], c[1][1], c[1][2],
		c[2][0], c[2][1], c[2][2],
	})
}

// Inverse returns the inverse of the cell matrix.
func (c Cell) Inverse() (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(c.Matrix()); err != nil {
		return nil, ErrSingularCell
	}
	return &inv, nil
}

// Reciprocal returns the transposed inverse of the cell matrix. Its rows are
// the reciprocal lattice vectors (without the 2*pi factor).
func (c Cell) Reciprocal() (*mat.Dense, error) {
	inv, err := c.Inverse()
	if err != nil {
		return nil, err
	}
	var rec mat.Dense
	rec.CloneFrom(inv.T())
	return &rec, nil
}

// Volume returns the volume spanned by the three cell vectors.
func (c Cell) Volume() float64 {
	return math.Abs(mat.Det(c.Matrix()))
}

// NumRepeats computes the number of repeats required along each cell vector
// so that the original cell together with the repeated cells forms a box
// large enough that, for every atom in the central cell, all neighbor atoms
// within the cutoff distance are contained in the box. Axes with pbc
// disabled always report zero repeats.
func NumRepeats(cell Cell, pbc [3]bool, cutoff float64) ([3]int, error) {
	if cutoff < 0 {
		return [3]int{}, fmt.Errorf("pbc: cutoff must be non-negative, got %g", cutoff)
	}
	rec, err := cell.Reciprocal()
	if err != nil {
		return [3]int{}, err
	}
	var repeats [3]int
	for i := 0; i < 3; i++ {
		if !pbc[i] {
			continue
		}
		invDistance := math.Hypot(math.Hypot(rec.At(i, 0), rec.At(i, 1)), rec.At(i, 2))
		repeats[i] = int(math.Ceil(cutoff * invDistance))
	}
	return repeats, nil
}

// MapToCentral maps atoms outside the unit cell back into the cell.
// Coordinates is an n x 3 matrix of cartesian positions; the result is a new
// matrix, the input is not modified. Axes with pbc disabled are left as-is.
func MapToCentral(cell Cell, coordinates *mat.Dense, pbc [3]bool) (*mat.Dense, error) {
	r, c := coordinates.Dims()
	if c != 3 {
		return nil, fmt.Errorf("pbc: coordinates must have 3 columns, got %d", c)
	}
	inv, err := cell.Inverse()
	if err != nil {
		return nil, err
	}
	// Convert to fractional cell coordinates, wrap the periodic axes into
	// [0, 1), then convert back to cartesian.
	var frac mat.Dense
	frac.Mul(coordinates, inv)
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			if pbc[j] {
				v := frac.At(i, j)
				frac.Set(i, j, v-math.Floor(v))
			}
		}
	}
	wrapped := mat.NewDense(r, 3, nil)
	wrapped.Mul(&frac, cell.Matrix())
	return wrapped, nil
}
