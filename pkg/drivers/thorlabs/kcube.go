package thorlabs

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Default velocity profile of the KST201 stage, in mm and mm/s.
const (
	DefaultMinVelocity  = 0.0
	DefaultMaxVelocity  = 0.5
	DefaultAcceleration = 0.2

	settingsInitTimeout = 5 * time.Second
	pollInterval        = 250 * time.Millisecond
	moveTimeout         = 60 * time.Second
	moveSettle          = 100 * time.Millisecond
)

// KCubeConfig identifies and configures one KCube controller.
type KCubeConfig struct {
	Serial string

	MinVelocity  float64
	MaxVelocity  float64
	Acceleration float64
}

func (c *KCubeConfig) applyDefaults() {
	if c.MaxVelocity == 0 {
		c.MaxVelocity = DefaultMaxVelocity
	}
	if c.Acceleration == 0 {
		c.Acceleration = DefaultAcceleration
	}
}

// KCube is a connected, enabled stepper-motor controller.
type KCube struct {
	dev Device
	cfg KCubeConfig
}

// NewKCube connects, initializes, and enables the controller. Any failure in
// the bring-up sequence is returned to the caller after the device is
// disconnected again; the process is never terminated from here.
func NewKCube(dev Device, cfg KCubeConfig) (*KCube, error) {
	if cfg.Serial == "" {
		return nil, pkgerrors.New("KCube serial number is required")
	}
	cfg.applyDefaults()

	if err := dev.Connect(cfg.Serial); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to KCube %s", cfg.Serial)
	}

	k := &KCube{dev: dev, cfg: cfg}
	if err := k.bringUp(); err != nil {
		return nil, multierr.Append(err, dev.Disconnect())
	}

	logrus.WithFields(logrus.Fields{
		"serial":       cfg.Serial,
		"max_velocity": cfg.MaxVelocity,
		"acceleration": cfg.Acceleration,
	}).Debug("KCube connected")

	return k, nil
}

func (k *KCube) bringUp() error {
	if err := k.dev.WaitForSettingsInitialized(settingsInitTimeout); err != nil {
		return pkgerrors.Wrap(err, "failed to initialize settings")
	}
	if err := k.dev.StartPolling(pollInterval); err != nil {
		return pkgerrors.Wrap(err, "failed to start polling")
	}
	if err := k.dev.EnableDevice(); err != nil {
		return pkgerrors.Wrap(err, "failed to enable device")
	}
	if err := k.dev.SetVelocityParams(k.cfg.MinVelocity, k.cfg.MaxVelocity, k.cfg.Acceleration); err != nil {
		return pkgerrors.Wrap(err, "failed to set velocity parameters")
	}
	return nil
}

// Home drives the stage to its reference switch.
func (k *KCube) Home() error {
	if err := k.dev.Home(moveTimeout); err != nil {
		return pkgerrors.Wrap(err, "failed to home")
	}
	time.Sleep(moveSettle)
	return nil
}

// MoveTo drives the stage to an absolute position in mm.
func (k *KCube) MoveTo(position float64) error {
	if err := k.dev.MoveTo(position, moveTimeout); err != nil {
		return pkgerrors.Wrapf(err, "failed to move to %g mm", position)
	}
	time.Sleep(moveSettle)
	return nil
}

// Position returns the stage position in mm.
func (k *KCube) Position() (float64, error) {
	return k.dev.Position()
}

// Close stops polling and disconnects.
func (k *KCube) Close() error {
	k.dev.StopPolling()
	return k.dev.Disconnect()
}
