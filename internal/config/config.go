// Package config loads and validates run configuration for the nnp CLI.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied by ValidateAndSetDefaults.
const (
	DefaultSteps          = 1000
	DefaultTimestepFs     = 1.0
	DefaultOutputInterval = 10
	DefaultEpsilon        = 1.0
	DefaultSigma          = 1.0
)

// Config is the full nnp run configuration, normally read from a TOML file.
type Config struct {
	Run       Run       `toml:"run"`
	System    System    `toml:"system"`
	Potential Potential `toml:"potential"`
	Output    Output    `toml:"output"`
}

// Run holds integrator settings.
type Run struct {
	Steps      int     `toml:"steps"`
	TimestepFs float64 `toml:"timestep_fs"`

	// Temperature in kelvin. Used to draw initial velocities; with a
	// positive ThermostatTauFs it is also held by a Berendsen thermostat.
	Temperature     float64 `toml:"temperature"`
	ThermostatTauFs float64 `toml:"thermostat_tau_fs"`

	// Seed for the velocity sampler. Zero means a fixed default seed so
	// that runs are reproducible unless asked otherwise.
	Seed uint64 `toml:"seed"`
}

// System describes the structure to simulate.
type System struct {
	// Geometry is the path of an XYZ file.
	Geometry string `toml:"geometry"`

	// Cell holds either 3 values (orthorhombic lengths) or 9 values
	// (full row-major cell matrix), in angstroms. Empty means no cell.
	Cell []float64 `toml:"cell"`

	// PBC enables periodic boundaries per axis: three booleans, or empty
	// for all-periodic when a cell is set. Ignored without a cell.
	PBC []bool `toml:"pbc"`
}

// Potential selects and parameterizes the potential energy surface.
type Potential struct {
	// Kind names the potential. Only "lennard-jones" is built in.
	Kind    string  `toml:"kind"`
	Epsilon float64 `toml:"epsilon"`
	Sigma   float64 `toml:"sigma"`
	Cutoff  float64 `toml:"cutoff"`
}

// Output controls trajectory writing.
type Output struct {
	// Trajectory is the XYZ file appended to every Interval steps.
	// Empty disables trajectory output.
	Trajectory string `toml:"trajectory"`
	Interval   int    `toml:"interval"`
}

// PBCArray returns the per-axis periodic flags as a fixed-size array.
// Validation guarantees the slice is empty or has three entries; when a
// cell is configured and no flags are given, all axes are periodic.
func (s System) PBCArray() [3]bool {
	if len(s.PBC) == 3 {
		return [3]bool{s.PBC[0], s.PBC[1], s.PBC[2]}
	}
	if len(s.Cell) > 0 {
		return [3]bool{true, true, true}
	}
	return [3]bool{}
}

// Load reads a TOML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := NewValidator().ValidateAndSetDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}
