// Package so3 contains tools to rotate point clouds in 3D space.
//
// Rotations about an axis through the origin form a one-parameter Lie group
// whose algebra is the skew-symmetric matrices; the two are connected by the
// exponential map. RotateAlong builds the group element exp(theta*W) for the
// generator W of the requested axis.
package so3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// leviCivita is the rank-3 antisymmetric symbol used to build the rotation
// generator W_ik = eps_ijk * n_j.
var leviCivita = func() [3][3][3]float64 {
	var e [3][3][3]float64
	e[0][1][2], e[1][2][0], e[2][0][1] = 1, 1, 1
	e[0][2][1], e[2][1][0], e[1][0][2] = -1, -1, -1
	return e
}()

// RotateAlong computes the rotation matrix for rotating about an axis that
// passes through the origin. The direction of axis specifies the axis of the
// rotation, its length the angle in radians, and its sign clockwise or
// anti-clockwise. The zero axis yields the identity.
//
// The returned matrix acts on column vectors: rotated = R * r.
func RotateAlong(axis [3]float64) *mat.Dense {
	w := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			var sum float64
			for j := 0; j < 3; j++ {
				sum += leviCivita[i][j][k] * axis[j]
			}
			w.Set(i, k, sum)
		}
	}
	var r mat.Dense
	r.Exp(w)
	return &r
}

// Apply rotates an n x 3 block of row-vector coordinates by the given
// rotation matrix, returning a new matrix. It computes (R * X^T)^T, which is
// X * R^T.
func Apply(rotation mat.Matrix, coordinates *mat.Dense) (*mat.Dense, error) {
	n, c := coordinates.Dims()
	if c != 3 {
		return nil, fmt.Errorf("so3: coordinates must have 3 columns, got %d", c)
	}
	rr, rc := rotation.Dims()
	if rr != 3 || rc != 3 {
		return nil, fmt.Errorf("so3: rotation must be 3x3, got %dx%d", rr, rc)
	}
	rotated := mat.NewDense(n, 3, nil)
	rotated.Mul(coordinates, rotation.T())
	return rotated, nil
}
