package config

import (
	"errors"
	"fmt"
)

// Validator checks a Config and fills in defaults for unset fields.
type Validator struct{}

// NewValidator creates a config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates the configuration in place, applying
// defaults where fields are zero.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateRun(&cfg.Run); err != nil {
		return err
	}
	if err := v.validateSystem(&cfg.System); err != nil {
		return err
	}
	if err := v.validatePotential(&cfg.Potential); err != nil {
		return err
	}
	return v.validateOutput(&cfg.Output)
}

func (v *Validator) validateRun(run *Run) error {
	if run.Steps == 0 {
		run.Steps = DefaultSteps
	}
	if run.Steps < 0 {
		return fmt.Errorf("run.steps must be positive, got %d", run.Steps)
	}
	if run.TimestepFs == 0 {
		run.TimestepFs = DefaultTimestepFs
	}
	if run.TimestepFs < 0 {
		return fmt.Errorf("run.timestep_fs must be positive, got %g", run.TimestepFs)
	}
	if run.Temperature < 0 {
		return fmt.Errorf("run.temperature must be non-negative, got %g", run.Temperature)
	}
	if run.ThermostatTauFs < 0 {
		return fmt.Errorf("run.thermostat_tau_fs must be non-negative, got %g", run.ThermostatTauFs)
	}
	if run.Seed == 0 {
		run.Seed = 1
	}
	return nil
}

func (v *Validator) validateSystem(sys *System) error {
	if sys.Geometry == "" {
		return errors.New("system.geometry is required")
	}
	switch len(sys.Cell) {
	case 0, 3, 9:
	default:
		return fmt.Errorf("system.cell must have 3 or 9 values, got %d", len(sys.Cell))
	}
	switch len(sys.PBC) {
	case 0, 3:
	default:
		return fmt.Errorf("system.pbc must have 3 values, got %d", len(sys.PBC))
	}
	if len(sys.Cell) == 0 && (len(sys.PBC) == 3 && (sys.PBC[0] || sys.PBC[1] || sys.PBC[2])) {
		return errors.New("system.pbc requires system.cell")
	}
	return nil
}

func (v *Validator) validatePotential(pot *Potential) error {
	if pot.Kind == "" {
		pot.Kind = "lennard-jones"
	}
	if pot.Kind != "lennard-jones" {
		return fmt.Errorf("unknown potential.kind %q", pot.Kind)
	}
	if pot.Epsilon == 0 {
		pot.Epsilon = DefaultEpsilon
	}
	if pot.Sigma == 0 {
		pot.Sigma = DefaultSigma
	}
	if pot.Epsilon < 0 || pot.Sigma < 0 || pot.Cutoff < 0 {
		return errors.New("potential parameters must be non-negative")
	}
	return nil
}

func (v *Validator) validateOutput(out *Output) error {
	if out.Interval == 0 {
		out.Interval = DefaultOutputInterval
	}
	if out.Interval < 0 {
		return fmt.Errorf("output.interval must be positive, got %d", out.Interval)
	}
	return nil
}
