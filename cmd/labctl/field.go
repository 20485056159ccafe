package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoopdev/ktaga-lab/pkg/plot"
)

func NewFieldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "field",
		Short:   "Control and read the magnet field",
		GroupID: gMeasurement,
		Long: `Control and read the magnet field.

Setpoints are in the unit the daemon's rig file declares (Oe or mT) and are
reached with a slow voltage ramp, so large steps take a moment.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [field]",
			Short: "Ramp the field to a setpoint",
			RunE: func(_ *cobra.Command, args []string) error {
				field, err := parseFloatArg(args, "field")
				if err != nil {
					return err
				}

				ret, err := apiClient.SetField(field)
				if err != nil {
					return fmt.Errorf("failed to set field: %v", err)
				}

				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}

				return nil
			},
		},
		&cobra.Command{
			Use:   "get",
			Short: "Print the current field setpoint",
			RunE: func(cmd *cobra.Command, _ []string) error {
				field, err := apiClient.GetField()
				if err != nil {
					return fmt.Errorf("failed to get field: %v", err)
				}

				cmd.Println(field)
				return nil
			},
		},
		&cobra.Command{
			Use:   "measure",
			Short: "Measure the field with the hall sensor",
			RunE: func(cmd *cobra.Command, _ []string) error {
				field, err := apiClient.MeasureField()
				if err != nil {
					return fmt.Errorf("failed to measure field: %v", err)
				}

				cmd.Println(field)
				return nil
			},
		},
		newFieldSweepCommand(),
	)

	return cmd
}

func newFieldSweepCommand() *cobra.Command {
	var (
		start  float64
		stop   float64
		points int
		unit   string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep the field and plot the measured response",
		Long: `Sweep the field and plot the measured response.

Steps the setpoint from --start to --stop in --points equal steps, measuring
the hall sensor at each one, then renders the measured series as a terminal
graph. The field is left at the last setpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if points < 2 {
				return fmt.Errorf("points must be at least 2, got %d", points)
			}

			measured := make([]float64, 0, points)
			step := (stop - start) / float64(points-1)
			for i := 0; i < points; i++ {
				setpoint := start + float64(i)*step
				if _, err := apiClient.SetField(setpoint); err != nil {
					return fmt.Errorf("failed to set field to %g: %v", setpoint, err)
				}
				m, err := apiClient.MeasureField()
				if err != nil {
					return fmt.Errorf("failed to measure field at %g: %v", setpoint, err)
				}
				measured = append(measured, m)
				logrus.Debugf("sweep point %d/%d: set %g measured %g", i+1, points, setpoint, m)
			}

			cmd.Println(plot.Sweep(measured, start, stop, unit))
			cmd.Printf("%s %d points, last measured %s\n",
				color.New(color.Bold).Sprint("sweep done:"),
				points,
				color.GreenString("%g %s", measured[len(measured)-1], unit))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&start, "start", 0, "first setpoint")
	flags.Float64Var(&stop, "stop", 100, "last setpoint")
	flags.IntVar(&points, "points", 21, "number of setpoints")
	flags.StringVar(&unit, "unit", "mT", "unit label for the plot")

	return cmd
}
