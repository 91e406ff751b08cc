package vib

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
	"github.com/aiqm/nnp/so3"
)

// quadratic is a potential of non-interacting atoms in the anisotropic bowl
// U = 0.5*(0.5*x^2 + y^2 + 2*z^2), rotated 45 degrees about the z axis.
// Its Hessian and normal modes are known in closed form, which makes it a
// good exercise for the numerical machinery here.
type quadratic struct {
	rotation *mat.Dense
}

func newQuadratic() quadratic {
	// Rotating the potential by +45 degrees is the same as rotating the
	// coordinates by -45 degrees before evaluating the axis-aligned bowl.
	return quadratic{rotation: so3.RotateAlong([3]float64{0, 0, -math.Pi / 4})}
}

func (q quadratic) Energy(sys nnp.System) (float64, error) {
	rotated, err := so3.Apply(q.rotation, sys.Coordinates)
	if err != nil {
		return 0, err
	}
	var total float64
	n, _ := rotated.Dims()
	for i := 0; i < n; i++ {
		x, y, z := rotated.At(i, 0), rotated.At(i, 1), rotated.At(i, 2)
		total += 0.5 * (0.5*x*x + y*y + 2*z*z)
	}
	return total, nil
}

func twoAtomsAtOrigin() nnp.System {
	return nnp.System{Coordinates: mat.NewDense(2, 3, nil)}
}

// The rotated bowl has the per-atom Hessian
//
//	[  0.75 -0.25  0 ]
//	[ -0.25  0.75  0 ]
//	[  0     0     2 ]
//
// and no coupling between distinct atoms.
func TestHessian_RotatedQuadratic(t *testing.T) {
	hessian, err := Hessian(newQuadratic(), twoAtomsAtOrigin(), nil)
	require.NoError(t, err)

	dim, _ := hessian.Dims()
	require.Equal(t, 6, dim)

	block := [3][3]float64{
		{0.75, -0.25, 0},
		{-0.25, 0.75, 0},
		{0, 0, 2},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, block[i][j], hessian.At(i, j), 1e-6, "block 00 at (%d,%d)", i, j)
			assert.InDelta(t, block[i][j], hessian.At(i+3, j+3), 1e-6, "block 11 at (%d,%d)", i, j)
			assert.InDelta(t, 0, hessian.At(i, j+3), 1e-6, "block 01 at (%d,%d)", i, j)
		}
	}
}

func TestForces_NumericMatchesAnalytic(t *testing.T) {
	sys := nnp.System{Coordinates: mat.NewDense(1, 3, []float64{0.3, -0.7, 1.1})}
	q := newQuadratic()

	numeric, err := Forces(q, sys)
	require.NoError(t, err)

	// Differentiate by hand: F = -R^T K R r with K = diag(0.5, 1, 2).
	r := []float64{0.3, -0.7, 1.1}
	rot := q.rotation
	var rotated [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rotated[i] += rot.At(i, j) * r[j]
		}
	}
	k := [3]float64{0.5, 1, 2}
	var analytic [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			analytic[i] -= rot.At(j, i) * k[j] * rotated[j]
		}
	}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, analytic[i], numeric.At(0, i), 1e-7)
	}
}

// With masses (1, 3) the angular frequencies of the two independent atoms
// are sqrt(k/m) for k in {0.5, 1, 2}.
func TestAnalyze_Frequencies(t *testing.T) {
	hessian, err := Hessian(newQuadratic(), twoAtomsAtOrigin(), nil)
	require.NoError(t, err)

	result, err := Analyze([]float64{1, 3}, hessian)
	require.NoError(t, err)

	expected := []float64{
		1 / math.Sqrt(6), 1 / math.Sqrt(3), 1 / math.Sqrt(2),
		math.Sqrt(2.0 / 3), 1, math.Sqrt(2),
	}
	require.Len(t, result.AngularFrequencies, 6)
	for i, want := range expected {
		assert.InDelta(t, want, result.AngularFrequencies[i], 1e-6, "mode %d", i)
	}
}

func TestAnalyze_ModeStructure(t *testing.T) {
	hessian, err := Hessian(newQuadratic(), twoAtomsAtOrigin(), nil)
	require.NoError(t, err)
	result, err := Analyze([]float64{1, 3}, hessian)
	require.NoError(t, err)
	require.Len(t, result.Modes, 6)

	atomAtRest := func(t *testing.T, mode *mat.Dense, atom int) {
		t.Helper()
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0, mode.At(atom, k), 1e-5)
		}
	}

	// Softest mode: the heavy atom moves along (x, y), the light one rests.
	mode := result.Modes[0]
	atomAtRest(t, mode, 0)
	assert.InDelta(t, mode.At(1, 0), mode.At(1, 1), 1e-5)
	assert.InDelta(t, 0, mode.At(1, 2), 1e-5)

	// Second mode: heavy atom along (x, -y).
	mode = result.Modes[1]
	atomAtRest(t, mode, 0)
	assert.InDelta(t, mode.At(1, 0), -mode.At(1, 1), 1e-5)
	assert.InDelta(t, 0, mode.At(1, 2), 1e-5)

	// Stiffest mode: light atom along z.
	mode = result.Modes[5]
	atomAtRest(t, mode, 1)
	assert.InDelta(t, 0, mode.At(0, 0), 1e-5)
	assert.InDelta(t, 0, mode.At(0, 1), 1e-5)
	assert.Greater(t, math.Abs(mode.At(0, 2)), 1e-3)
}

// A maximum of the potential has negative curvature; the analysis reports
// it as a negative frequency instead of NaN.
func TestAnalyze_ImaginaryMode(t *testing.T) {
	hessian := mat.NewSymDense(3, []float64{
		-1, 0, 0,
		0, 1, 0,
		0, 0, 4,
	})
	result, err := Analyze([]float64{1}, hessian)
	require.NoError(t, err)

	assert.InDelta(t, -1, result.AngularFrequencies[0], 1e-10)
	assert.InDelta(t, 1, result.AngularFrequencies[1], 1e-10)
	assert.InDelta(t, 2, result.AngularFrequencies[2], 1e-10)
}

func TestAnalyze_Validation(t *testing.T) {
	hessian := mat.NewSymDense(6, nil)

	_, err := Analyze([]float64{1}, hessian)
	assert.ErrorIs(t, err, nnp.ErrDimensionMismatch)

	_, err = Analyze([]float64{1, -3}, hessian)
	assert.Error(t, err)

	_, err = Analyze([]float64{1}, mat.NewSymDense(4, nil))
	assert.ErrorIs(t, err, nnp.ErrDimensionMismatch)
}

func TestBatchHessian(t *testing.T) {
	systems := []nnp.System{
		twoAtomsAtOrigin(),
		{Coordinates: mat.NewDense(2, 3, []float64{0.1, 0.2, 0.3, -0.4, 0.5, -0.6})},
		twoAtomsAtOrigin(),
	}
	batch, err := BatchHessian(context.Background(), newQuadratic(), systems, nil)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	// The Hessian of a quadratic potential does not depend on the
	// expansion point, so all three must agree.
	for i := 1; i < 3; i++ {
		assert.True(t, mat.EqualApprox(batch[0], batch[i], 1e-6), "hessian %d differs", i)
	}
}

func TestBatchHessian_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	systems := make([]nnp.System, 64)
	for i := range systems {
		systems[i] = twoAtomsAtOrigin()
	}
	_, err := BatchHessian(ctx, newQuadratic(), systems, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchAnalyze_SharedMasses(t *testing.T) {
	batch, err := BatchHessian(context.Background(), newQuadratic(),
		[]nnp.System{twoAtomsAtOrigin(), twoAtomsAtOrigin()}, nil)
	require.NoError(t, err)

	results, err := BatchAnalyze([]float64{1, 3}, batch)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i := range results[0].AngularFrequencies {
		assert.InDelta(t, results[0].AngularFrequencies[i], results[1].AngularFrequencies[i], 1e-9)
	}
}
