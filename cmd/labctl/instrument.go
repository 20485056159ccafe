package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewInstrumentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instrument",
		Short:   "Inspect and set instrument parameters",
		GroupID: gInstruments,
		Long: `Inspect and set instrument parameters.

Instruments are addressed by the name the rig file gives them. Values are
JSON: numbers bare, strings quoted, booleans true/false.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List connected instruments",
			RunE: func(cmd *cobra.Command, _ []string) error {
				names, err := apiClient.GetInstruments()
				if err != nil {
					return fmt.Errorf("failed to list instruments: %v", err)
				}
				for _, name := range names {
					cmd.Println(name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "params [instrument]",
			Short: "List the parameters of an instrument",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := apiClient.GetParamNames(args[0])
				if err != nil {
					return fmt.Errorf("failed to list parameters: %v", err)
				}
				for _, name := range names {
					cmd.Println(name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get [instrument] [param]",
			Short: "Read a parameter from the instrument",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := apiClient.GetParam(args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to get %s/%s: %v", args[0], args[1], err)
				}
				cmd.Println(value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set [instrument] [param] [value]",
			Short: "Write a parameter to the instrument",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ret, err := apiClient.SetParam(args[0], args[1], args[2])
				if err != nil {
					return fmt.Errorf("failed to set %s/%s: %v", args[0], args[1], err)
				}
				if ret != "" {
					cmd.Println(ret)
				}
				return nil
			},
		},
	)

	return cmd
}

func NewVoltCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "volt",
		Short:   "Read voltage from the voltmeter",
		GroupID: gMeasurement,
	}

	read := &cobra.Command{
		Use:   "read",
		Short: "Trigger a reading and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := apiClient.GetFloatParam(name, "volt")
			if err != nil {
				return fmt.Errorf("failed to read voltage: %v", err)
			}
			cmd.Println(v)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&name, "name", "dmm", "voltmeter instrument name")
	cmd.AddCommand(read)

	return cmd
}
