package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
	"github.com/aiqm/nnp/element"
	"github.com/aiqm/nnp/internal/config"
	"github.com/aiqm/nnp/internal/version"
	"github.com/aiqm/nnp/md"
	"github.com/aiqm/nnp/pbc"
	"github.com/aiqm/nnp/so3"
	"github.com/aiqm/nnp/units"
	"github.com/aiqm/nnp/vib"
	"github.com/aiqm/nnp/xyz"
)

func main() {
	app := &cli.App{
		Name:    "nnp",
		Usage:   "Utilities for neural network potentials: geometry, vibrations, dynamics",
		Version: version.Info(),
		Commands: []*cli.Command{
			{
				Name:      "rotate",
				Usage:     "Rotate the atoms of an XYZ file about an axis through the origin",
				ArgsUsage: "input.xyz",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "axis",
						Usage:    "Rotation axis as x,y,z (direction only; length is ignored)",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     "angle",
						Usage:    "Rotation angle in degrees",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: stdout)",
					},
				},
				Action: rotateAction,
			},
			{
				Name:      "wrap",
				Usage:     "Map atoms outside the unit cell back into the cell",
				ArgsUsage: "input.xyz",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cell",
						Usage:    "Cell as a,b,c lengths or 9 row-major values, in angstroms",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "pbc",
						Usage: "Periodic axes as three 0/1 values (default: 1,1,1)",
						Value: "1,1,1",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: stdout)",
					},
				},
				Action: wrapAction,
			},
			{
				Name:      "freq",
				Usage:     "Vibrational analysis with a Lennard-Jones potential",
				ArgsUsage: "input.xyz",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "epsilon", Usage: "LJ well depth in eV", Value: 1.0},
					&cli.Float64Flag{Name: "sigma", Usage: "LJ distance parameter in angstroms", Value: 1.0},
					&cli.Float64Flag{Name: "cutoff", Usage: "Interaction cutoff in angstroms (0: none)"},
				},
				Action: freqAction,
			},
			{
				Name:  "md",
				Usage: "Run velocity Verlet molecular dynamics from a TOML config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Run configuration file",
						Value:   "run.toml",
					},
				},
				Action: mdAction,
			},
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Println(version.FullInfo())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "nnp: %v\n", err)
		os.Exit(1)
	}
}

func rotateAction(c *cli.Context) error {
	frame, err := inputFrame(c)
	if err != nil {
		return err
	}
	axis, err := parseTriple(c.String("axis"))
	if err != nil {
		return fmt.Errorf("--axis: %w", err)
	}
	norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if norm == 0 {
		return fmt.Errorf("--axis: axis must be non-zero")
	}
	theta := c.Float64("angle") * math.Pi / 180
	for k := 0; k < 3; k++ {
		axis[k] = axis[k] / norm * theta
	}
	rotation := so3.RotateAlong(axis)
	rotated, err := so3.Apply(rotation, frame.Coordinates)
	if err != nil {
		return err
	}
	frame.Coordinates = rotated
	return writeFrame(c, frame)
}

func wrapAction(c *cli.Context) error {
	frame, err := inputFrame(c)
	if err != nil {
		return err
	}
	cell, err := parseCell(c.String("cell"))
	if err != nil {
		return fmt.Errorf("--cell: %w", err)
	}
	periodic, err := parsePBC(c.String("pbc"))
	if err != nil {
		return fmt.Errorf("--pbc: %w", err)
	}
	wrapped, err := pbc.MapToCentral(cell, frame.Coordinates, periodic)
	if err != nil {
		return err
	}
	frame.Coordinates = wrapped
	return writeFrame(c, frame)
}

func freqAction(c *cli.Context) error {
	frame, err := inputFrame(c)
	if err != nil {
		return err
	}
	masses, err := element.MassesOf(frame.Species)
	if err != nil {
		return err
	}
	sys := nnp.System{Species: frame.Species, Coordinates: frame.Coordinates}
	lj := md.LennardJones{
		Epsilon: c.Float64("epsilon"),
		Sigma:   c.Float64("sigma"),
		Cutoff:  c.Float64("cutoff"),
	}
	hessian, err := vib.Hessian(lj, sys, nil)
	if err != nil {
		return err
	}
	result, err := vib.Analyze(masses, hessian)
	if err != nil {
		return err
	}
	fmt.Println("mode    wavenumber (cm^-1)")
	for i, omega := range result.AngularFrequencies {
		fmt.Printf("%4d %20.4f\n", i, units.ToWavenumber(omega))
	}
	return nil
}

func mdAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	frame, err := xyz.ReadFile(cfg.System.Geometry)
	if err != nil {
		return err
	}
	masses, err := element.MassesOf(frame.Species)
	if err != nil {
		return err
	}

	sys := nnp.System{Species: frame.Species, Coordinates: frame.Coordinates, PBC: cfg.System.PBCArray()}
	if len(cfg.System.Cell) > 0 {
		cell, err := cellFromValues(cfg.System.Cell)
		if err != nil {
			return err
		}
		sys.Cell = &cell
	}

	velocities, err := md.MaxwellBoltzmann(masses, cfg.Run.Temperature, rand.NewSource(cfg.Run.Seed))
	if err != nil {
		return err
	}

	calc := md.NewCalculator(md.LennardJones{
		Epsilon: cfg.Potential.Epsilon,
		Sigma:   cfg.Potential.Sigma,
		Cutoff:  cfg.Potential.Cutoff,
	})
	integrator := &md.VelocityVerlet{
		Calculator: calc,
		Timestep:   cfg.Run.TimestepFs * units.Fs,
	}
	if cfg.Run.ThermostatTauFs > 0 {
		integrator.Thermostat = md.Berendsen{
			Temperature:  cfg.Run.Temperature,
			TimeConstant: cfg.Run.ThermostatTauFs * units.Fs,
		}
	}

	var trajectory *os.File
	if cfg.Output.Trajectory != "" {
		trajectory, err = os.Create(cfg.Output.Trajectory)
		if err != nil {
			return err
		}
		defer trajectory.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	callback := func(step md.Step, sys *nnp.System, _ *mat.Dense) error {
		if step.Index%cfg.Output.Interval != 0 {
			return nil
		}
		fmt.Printf("step %6d  E_pot %14.6f  E_kin %12.6f  T %10.2f K\n",
			step.Index, step.Results.Energy, step.KineticEnergy, step.Temperature)
		if trajectory == nil {
			return nil
		}
		return xyz.Write(trajectory, &xyz.Frame{
			Comment:     fmt.Sprintf("step=%d energy=%.8f", step.Index, step.Results.Energy),
			Species:     sys.Species,
			Coordinates: sys.Coordinates,
		})
	}
	return integrator.Run(ctx, &sys, masses, velocities, cfg.Run.Steps, callback)
}

func inputFrame(c *cli.Context) (*xyz.Frame, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one input file, got %d arguments", c.NArg())
	}
	return xyz.ReadFile(c.Args().First())
}

func writeFrame(c *cli.Context, frame *xyz.Frame) error {
	if out := c.String("output"); out != "" {
		return xyz.WriteFile(out, frame)
	}
	return xyz.Write(os.Stdout, frame)
}

func parseTriple(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, err
		}
		out[i] = v
	}
	return out, nil
}

func parseCell(s string) (pbc.Cell, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return pbc.Cell{}, err
		}
		values[i] = v
	}
	return cellFromValues(values)
}

func cellFromValues(values []float64) (pbc.Cell, error) {
	switch len(values) {
	case 3:
		return pbc.OrthorhombicCell(values[0], values[1], values[2]), nil
	case 9:
		return pbc.NewCell(mat.NewDense(3, 3, values))
	default:
		return pbc.Cell{}, fmt.Errorf("cell needs 3 or 9 values, got %d", len(values))
	}
}

func parsePBC(s string) ([3]bool, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]bool{}, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	var out [3]bool
	for i, p := range parts {
		switch strings.TrimSpace(p) {
		case "1", "true":
			out[i] = true
		case "0", "false":
			out[i] = false
		default:
			return [3]bool{}, fmt.Errorf("bad boolean %q", p)
		}
	}
	return out, nil
}
