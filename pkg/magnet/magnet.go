// Package magnet controls the electromagnet of the in-plane magnetic prober:
// a calibrated voltage ramp on a DAQ analog output drives the magnet, and a
// Hall sensor on an analog input reports the field actually present. The
// package also carries the angle controller for the rotating-magnet prober.
package magnet

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoopdev/ktaga-lab/pkg/daq"
)

// Drive voltage safety range of the magnet amplifier.
const (
	VoltMin = -10.0
	VoltMax = 10.0
)

// ErrFieldRange is returned when a requested field maps to a drive voltage
// outside [VoltMin, VoltMax]. The request is rejected before any hardware
// call.
var ErrFieldRange = errors.New("target field outside drive voltage range")

// Config holds the acquisition settings of the field controller. Zero values
// fall back to the rig defaults.
type Config struct {
	// OutputChannel is the analog output driving the magnet (e.g. "Dev1/ao0").
	OutputChannel string
	// HallChannel is the analog input reading the Hall sensor (e.g. "Dev1/ai0").
	HallChannel string

	Unit Unit

	// ReadSampleNum samples at ReadSampleClock are averaged per measurement.
	ReadSampleNum   int
	ReadSampleClock int

	// A set ramp is WriteArrayLength samples emitted at WriteSampleClock.
	WriteSampleClock int
	WriteArrayLength int

	// SettleTime is waited after the hardware reports the ramp written.
	SettleTime time.Duration
}

func (c *Config) applyDefaults() {
	if c.Unit == "" {
		c.Unit = Millitesla
	}
	if c.ReadSampleNum == 0 {
		c.ReadSampleNum = 100
	}
	if c.ReadSampleClock == 0 {
		c.ReadSampleClock = 10000
	}
	if c.WriteSampleClock == 0 {
		c.WriteSampleClock = 100000
	}
	if c.WriteArrayLength == 0 {
		c.WriteArrayLength = 1000
	}
	if c.SettleTime == 0 {
		c.SettleTime = 100 * time.Millisecond
	}
}

// Controller owns the magnet's DAQ channels. It is synchronous and not safe
// for concurrent use; callers serialize SetField/MeasureField on one
// instance.
type Controller struct {
	dev daq.Device
	cfg Config
	cal Calibration

	// Last commanded output. Mutated only after a successful ramp write.
	voltage float64
	field   float64
}

// New drives the output to zero and returns a ready controller. A transport
// failure is returned as an error; the caller decides whether to retry or
// abort.
func New(dev daq.Device, cfg Config) (*Controller, error) {
	cfg.applyDefaults()
	c := &Controller{
		dev: dev,
		cfg: cfg,
		cal: Calibration{Unit: cfg.Unit},
	}
	if err := c.writeWaveform(make([]float64, cfg.WriteArrayLength)); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to zero magnet output")
	}
	return c, nil
}

// SetField ramps the drive voltage from the last commanded value to the
// calibrated target and blocks until the waveform is fully written, plus the
// settle time. The commanded state is updated only after a successful write.
func (c *Controller) SetField(field float64) error {
	volt := c.cal.FieldToVoltage(field)
	if volt < VoltMin || volt > VoltMax {
		return pkgerrors.Wrapf(ErrFieldRange, "%g %s -> %.3f V", field, c.cfg.Unit, volt)
	}

	ramp := linspace(c.voltage, volt, c.cfg.WriteArrayLength)
	if err := c.writeWaveform(ramp); err != nil {
		return err
	}
	c.voltage = volt
	c.field = field

	logrus.WithFields(logrus.Fields{
		"field":   field,
		"unit":    c.cfg.Unit,
		"voltage": volt,
	}).Debug("field setpoint written")

	time.Sleep(c.cfg.SettleTime)
	return nil
}

// Field returns the last commanded field value. This is the cached setpoint,
// not a measurement.
func (c *Controller) Field() float64 {
	return c.field
}

// Voltage returns the last commanded drive voltage.
func (c *Controller) Voltage() float64 {
	return c.voltage
}

// MeasureField acquires one batch of Hall voltage samples, reduces it by
// arithmetic mean, and applies the inverse calibration. No smoothing is
// carried across calls.
func (c *Controller) MeasureField() (float64, error) {
	task, err := c.dev.InputTask(c.cfg.HallChannel, VoltMin, VoltMax, c.cfg.ReadSampleClock)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to configure Hall input")
	}
	defer closeTask(task)

	samples, err := task.Read(c.cfg.ReadSampleNum)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read Hall voltage")
	}

	volt := mean(samples)
	field := c.cal.VoltageToField(volt)

	logrus.WithFields(logrus.Fields{
		"samples": len(samples),
		"voltage": volt,
		"field":   field,
		"unit":    c.cfg.Unit,
	}).Debug("field measured")

	return field, nil
}

func (c *Controller) writeWaveform(samples []float64) error {
	task, err := c.dev.OutputTask(c.cfg.OutputChannel, VoltMin, VoltMax, c.cfg.WriteSampleClock)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to configure magnet output")
	}
	defer closeTask(task)

	if err := task.Write(samples); err != nil {
		return pkgerrors.Wrap(err, "failed to write magnet waveform")
	}
	return nil
}

func closeTask(t interface{ Close() error }) {
	if err := t.Close(); err != nil {
		logrus.Errorf("failed to close DAQ task: %v", err)
	}
}

// linspace returns n evenly spaced samples from start to stop, endpoints
// included.
func linspace(start, stop float64, n int) []float64 {
	if n < 2 {
		return []float64{stop}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
