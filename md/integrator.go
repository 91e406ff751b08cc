package md

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
	"github.com/aiqm/nnp/units"
)

// Thermostat adjusts velocities once per step, after the velocity update.
type Thermostat interface {
	Apply(velocities *mat.Dense, masses []float64, dt float64)
}

// Berendsen is a weak-coupling thermostat that rescales velocities toward a
// target temperature with a characteristic relaxation time.
type Berendsen struct {
	// Temperature is the target, in kelvin.
	Temperature float64

	// TimeConstant is the relaxation time in natural time units. Larger
	// values couple more weakly; it must be at least the timestep.
	TimeConstant float64
}

// Apply rescales the velocities in place.
func (b Berendsen) Apply(velocities *mat.Dense, masses []float64, dt float64) {
	current := Temperature(velocities, masses)
	if current == 0 {
		return
	}
	tau := b.TimeConstant
	if tau < dt {
		tau = dt
	}
	scale2 := 1 + dt/tau*(b.Temperature/current-1)
	if scale2 < 0 {
		scale2 = 0
	}
	velocities.Scale(math.Sqrt(scale2), velocities)
}

// Step describes the state of a trajectory after one integration step.
type Step struct {
	// Index counts integration steps, starting at 1. Index 0 reports the
	// initial state before any integration.
	Index int

	Results       Results
	KineticEnergy float64
	Temperature   float64
}

// Callback observes a trajectory. Returning an error stops the run.
type Callback func(step Step, sys *nnp.System, velocities *mat.Dense) error

// VelocityVerlet integrates Newton's equations of motion with the velocity
// Verlet scheme at a fixed timestep.
type VelocityVerlet struct {
	Calculator *Calculator

	// Timestep in natural time units (e.g. 1*units.Fs).
	Timestep float64

	// Thermostat, if set, is applied after every velocity update. Leave
	// nil for a constant-energy trajectory.
	Thermostat Thermostat
}

// Run advances the system for the given number of steps, mutating the
// system's coordinates and the velocity matrix in place. Masses has one
// entry per atom (amu). The callback, if non-nil, is invoked for the initial
// state and after every step; context cancellation is checked between steps.
func (vv *VelocityVerlet) Run(ctx context.Context, sys *nnp.System, masses []float64, velocities *mat.Dense, steps int, cb Callback) error {
	if vv.Calculator == nil {
		return errors.New("md: integrator has no calculator")
	}
	if vv.Timestep <= 0 {
		return fmt.Errorf("md: timestep must be positive, got %g", vv.Timestep)
	}
	if err := sys.Validate(); err != nil {
		return err
	}
	n := sys.NumAtoms()
	if len(masses) != n {
		return fmt.Errorf("%w: %d masses for %d atoms", nnp.ErrDimensionMismatch, len(masses), n)
	}
	if vr, vc := velocities.Dims(); vr != n || vc != 3 {
		return fmt.Errorf("%w: velocities are %dx%d for %d atoms", nnp.ErrDimensionMismatch, vr, vc, n)
	}

	dt := vv.Timestep
	res, err := vv.Calculator.Calculate(sys, Properties{Forces: true})
	if err != nil {
		return err
	}
	if cb != nil {
		if err := vv.report(cb, 0, res, sys, velocities, masses); err != nil {
			return err
		}
	}

	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Half-kick, drift, recompute forces, half-kick.
		kick(velocities, res.Forces, masses, dt/2)
		drift(sys.Coordinates, velocities, dt)

		res, err = vv.Calculator.Calculate(sys, Properties{Forces: true})
		if err != nil {
			return fmt.Errorf("md: step %d: %w", step, err)
		}
		kick(velocities, res.Forces, masses, dt/2)

		if vv.Thermostat != nil {
			vv.Thermostat.Apply(velocities, masses, dt)
		}
		if cb != nil {
			if err := vv.report(cb, step, res, sys, velocities, masses); err != nil {
				return err
			}
		}
	}
	return nil
}

func (vv *VelocityVerlet) report(cb Callback, index int, res Results, sys *nnp.System, velocities *mat.Dense, masses []float64) error {
	ke := KineticEnergy(velocities, masses)
	return cb(Step{
		Index:         index,
		Results:       res,
		KineticEnergy: ke,
		Temperature:   units.Temperature(ke, 3*len(masses)),
	}, sys, velocities)
}

func kick(velocities, forces *mat.Dense, masses []float64, dt float64) {
	for i, m := range masses {
		for k := 0; k < 3; k++ {
			velocities.Set(i, k, velocities.At(i, k)+forces.At(i, k)/m*dt)
		}
	}
}

func drift(coordinates, velocities *mat.Dense, dt float64) {
	n, _ := coordinates.Dims()
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			coordinates.Set(i, k, coordinates.At(i, k)+velocities.At(i, k)*dt)
		}
	}
}

// KineticEnergy returns the total kinetic energy of the velocities (eV for
// amu masses and natural velocities).
func KineticEnergy(velocities *mat.Dense, masses []float64) float64 {
	var ke float64
	for i, m := range masses {
		for k := 0; k < 3; k++ {
			v := velocities.At(i, k)
			ke += 0.5 * m * v * v
		}
	}
	return ke
}

// Temperature returns the instantaneous temperature in kelvin, counting
// three degrees of freedom per atom.
func Temperature(velocities *mat.Dense, masses []float64) float64 {
	return units.Temperature(KineticEnergy(velocities, masses), 3*len(masses))
}
