package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSiggenCommand is sugar over the generic instrument parameters for the
// signal generator everyone pokes at constantly.
func NewSiggenCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "siggen",
		Short:   "Control the microwave signal generator",
		GroupID: gInstruments,
	}

	setParam := func(param string, value float64) error {
		ret, err := apiClient.SetParam(name, param, strconv.FormatFloat(value, 'g', -1, 64))
		if err != nil {
			return fmt.Errorf("failed to set %s: %v", param, err)
		}
		if ret != "" {
			logrus.Debugf("daemon responded: %s", ret)
		}
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "freq [hz]",
			Short: "Set the output frequency in Hz",
			RunE: func(_ *cobra.Command, args []string) error {
				freq, err := parseFloatArg(args, "frequency")
				if err != nil {
					return err
				}
				return setParam("frequency", freq)
			},
		},
		&cobra.Command{
			Use:   "power [dbm]",
			Short: "Set the output power in dBm",
			RunE: func(_ *cobra.Command, args []string) error {
				power, err := parseFloatArg(args, "power")
				if err != nil {
					return err
				}
				return setParam("power", power)
			},
		},
		&cobra.Command{
			Use:   "on",
			Short: "Enable RF output",
			RunE: func(_ *cobra.Command, _ []string) error {
				_, err := apiClient.SetParam(name, "output_enabled", "true")
				if err != nil {
					return fmt.Errorf("failed to enable output: %v", err)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "off",
			Short: "Disable RF output",
			RunE: func(_ *cobra.Command, _ []string) error {
				_, err := apiClient.SetParam(name, "output_enabled", "false")
				if err != nil {
					return fmt.Errorf("failed to disable output: %v", err)
				}
				return nil
			},
		},
	)

	cmd.PersistentFlags().StringVar(&name, "name", "siggen", "signal generator instrument name")

	return cmd
}
