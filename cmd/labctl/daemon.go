package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoopdev/ktaga-lab/pkg/config"
	"github.com/hoopdev/ktaga-lab/pkg/daemon"
	"github.com/hoopdev/ktaga-lab/pkg/version"
)

func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the lab daemon",
		Long: `Run the lab daemon.

The daemon opens every instrument declared in the rig file, holds the field
setpoint, and serves the HTTP API on the unix socket until interrupted. On
shutdown, the field is ramped back to zero before the transports close.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.Infof("labd %s starting", version.Version)

			cfg := config.Default()
			if _, err := os.Stat(configPath); err == nil {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
				logrus.Infof("rig file %s loaded", configPath)
			} else {
				logrus.Warnf("rig file %s not found, running with defaults (simulated DAQ)", configPath)
			}
			if socketPath != config.DefaultSocketPath {
				cfg.Socket = socketPath
			}

			return daemon.Run(cfg)
		},
	}
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}
