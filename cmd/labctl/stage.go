package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStageCommand exposes the rotation stage's own parameter table. Motion in
// degrees goes through 'labctl angle'; this is for raw stage housekeeping.
func NewStageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stage",
		Short:   "Inspect the rotation stage controller",
		GroupID: gInstruments,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "position",
			Short: "Print the stage position in its configured unit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				pos, err := apiClient.GetFloatParam("stage", "position")
				if err != nil {
					return fmt.Errorf("failed to read stage position: %v", err)
				}
				cmd.Println(pos)
				return nil
			},
		},
		&cobra.Command{
			Use:   "unit [PULSe|UM|MM|DEG|MRAD]",
			Short: "Set the stage display unit",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				_, err := apiClient.SetParam("stage", "unit", fmt.Sprintf("%q", args[0]))
				if err != nil {
					return fmt.Errorf("failed to set stage unit: %v", err)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "speed [0-9]",
			Short: "Select the stage speed table entry",
			RunE: func(_ *cobra.Command, args []string) error {
				speed, err := parseIntArg(args, "speed")
				if err != nil {
					return err
				}
				_, err = apiClient.SetParam("stage", "select_speed", fmt.Sprintf("%d", speed))
				if err != nil {
					return fmt.Errorf("failed to select stage speed: %v", err)
				}
				return nil
			},
		},
	)

	return cmd
}
