package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewAngleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "angle",
		Short:   "Control the sample rotation angle",
		GroupID: gMeasurement,
		Long: `Control the sample rotation angle.

The daemon converts degrees to stage steps and blocks until the stage reports
it has stopped moving, so this command can take a while for large rotations.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [degrees]",
			Short: "Rotate the sample to an absolute angle",
			RunE: func(_ *cobra.Command, args []string) error {
				deg, err := parseFloatArg(args, "angle")
				if err != nil {
					return err
				}

				ret, err := apiClient.SetAngle(deg)
				if err != nil {
					return fmt.Errorf("failed to set angle: %v", err)
				}

				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}

				return nil
			},
		},
		&cobra.Command{
			Use:   "get",
			Short: "Print the current angle setpoint",
			RunE: func(cmd *cobra.Command, _ []string) error {
				deg, err := apiClient.GetAngle()
				if err != nil {
					return fmt.Errorf("failed to get angle: %v", err)
				}

				cmd.Println(deg)
				return nil
			},
		},
	)

	return cmd
}
