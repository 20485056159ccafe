package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hoopdev/ktaga-lab/pkg/client"
	"github.com/hoopdev/ktaga-lab/pkg/config"
)

var (
	logLevel   = "info"
	socketPath = config.DefaultSocketPath
	configPath = "/etc/labd.yaml"

	apiClient *client.Client
)

var (
	gMeasurement  = "Measurement:"
	gInstruments  = "Instruments:"
	commandGroups = []string{
		gMeasurement,
		gInstruments,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: lab daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'labctl daemon' first")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "labctl",
		Short:        "labctl controls the lab measurement rig",
		Long:         `labctl controls the lab measurement rig: the electromagnet field, the sample rotation stage, and the SCPI instruments declared in the rig file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}
			apiClient = client.New(socketPath)
			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "rig file path")
	globalFlags.StringVar(&socketPath, "daemon-socket", socketPath, "lab daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewFieldCommand(),
		NewAngleCommand(),
		NewInstrumentCommand(),
		NewVoltCommand(),
		NewSiggenCommand(),
		NewStageCommand(),
	)

	return cmd
}
