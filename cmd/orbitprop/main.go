package main

import (
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	orbit "github.com/solarsim/orbit"
)

var (
	flagConfigDir string
	flagCentral   string
	flagAltitude  float64
	flagEcc       float64
	flagIncl      float64
	flagPeriods   float64
	flagPoints    int
	flagDuration  float64
	flagStep      float64
	flagJ2        bool
	flagDrag      bool
	flagThird     bool
	flagOut       string
)

func main() {
	root := &cobra.Command{
		Use:   "orbitprop",
		Short: "Propagate a satellite orbit against the solar system catalog",
		RunE:  run,
	}
	root.Flags().StringVar(&flagConfigDir, "config", ".", "directory holding conf.toml")
	root.Flags().StringVar(&flagCentral, "central", "Earth", "central body name")
	root.Flags().Float64Var(&flagAltitude, "altitude", 400, "initial periapsis altitude in km")
	root.Flags().Float64Var(&flagEcc, "ecc", 0, "initial eccentricity")
	root.Flags().Float64Var(&flagIncl, "incl", 51.6, "initial inclination in degrees")
	root.Flags().Float64Var(&flagPeriods, "periods", 1, "number of orbital periods to propagate")
	root.Flags().IntVar(&flagPoints, "points", 360, "samples per period")
	root.Flags().Float64Var(&flagDuration, "duration", 0, "fixed duration in seconds instead of periods")
	root.Flags().Float64Var(&flagStep, "step", 0, "integration step in seconds (0 uses the configured step)")
	root.Flags().BoolVar(&flagJ2, "j2", true, "include J2 oblateness")
	root.Flags().BoolVar(&flagDrag, "drag", true, "include atmospheric drag")
	root.Flags().BoolVar(&flagThird, "third-body", true, "include third body gravity")
	root.Flags().StringVar(&flagOut, "out", "trajectory", "output CSV base name (empty disables output)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := log.With(log.NewLogfmtLogger(os.Stderr), "app", "orbitprop")

	cfg, err := orbit.LoadConfig(flagConfigDir)
	if err != nil {
		return err
	}
	reg, err := orbit.NewSolarSystem()
	if err != nil {
		return err
	}
	for _, bc := range cfg.Bodies {
		if _, err := reg.Register(bc); err != nil {
			return err
		}
	}

	central, found := reg.BodyByName(flagCentral)
	if !found {
		return fmt.Errorf("unknown central body '%s'", flagCentral)
	}
	μ := reg.GM(central)
	a := (central.Radius + flagAltitude) / (1 - flagEcc)
	el := orbit.NewElements(a, flagEcc, flagIncl, 0, 0, 0, orbit.CatalogEpoch, μ)
	R, V := orbit.ElementsToState(el, μ, orbit.CatalogEpoch)

	sat := orbit.SatelliteState{
		ID:            1,
		Position:      R,
		Velocity:      V,
		Mass:          1000,
		Area:          10,
		DragCoeff:     2.2,
		CentralBodyID: central.ID,
		Epoch:         orbit.CatalogEpoch,
	}
	flags := orbit.Flags{J2: flagJ2, Drag: flagDrag, ThirdBody: flagThird}
	prop := orbit.NewPropagator(reg, logger)

	step := flagStep
	if step <= 0 {
		step = cfg.Step
	}
	var points []orbit.TrajectoryPoint
	if flagDuration > 0 {
		points, err = prop.Propagate(sat, flagDuration, step, flags)
	} else {
		points, err = prop.PropagatePeriods(sat, flagPeriods, flagPoints, flags)
	}
	if err != nil {
		return err
	}
	logger.Log("status", "propagated", "samples", len(points), "period", el.Period())

	last := points[len(points)-1]
	if final, ok := orbit.StateToElements(last.Position, last.Velocity, μ, orbit.CatalogEpoch); ok {
		logger.Log("status", "final", "elements", final.String())
	}

	return orbit.WriteTrajectory(orbit.ExportConfig{Filename: flagOut, OutputDir: cfg.OutputDir}, points)
}
