// Package suruga drives the Suruga Seiki DS102 stepping-motor controller
// over its serial command set. Commands are CR-terminated ASCII; the
// controller needs a short pause between writes or it drops commands.
package suruga

import (
	"fmt"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hoopdev/ktaga-lab/pkg/param"
	"github.com/hoopdev/ktaga-lab/pkg/scpi"
)

// Serial settings of the DS102.
const (
	DefaultBaud = 9600

	writeDelay = 300 * time.Millisecond
)

// Drive directions accepted by Go.
const (
	GoCW       = 0 // clockwise
	GoCCW      = 1 // counterclockwise
	GoOrigin   = 2 // return to origin point
	GoHome     = 3 // move to home position
	GoAbs      = 4 // absolute position
	GoCWJog    = 5 // clockwise jogging
	GoCCWJog   = 6 // counterclockwise jogging
)

// Stop modes accepted by Stop and StopAll.
const (
	StopEmergency = 0
	StopReduction = 1
)

// DS102 is one axis of the stage controller. Soft-limit commands carry the
// axis number; create one DS102 per axis sharing a connection if more axes
// are needed, and serialize access externally.
type DS102 struct {
	conn   param.Client
	params *param.Table
	axis   int
}

// Open dials the controller's serial port and binds the given axis.
func Open(port string, axis int) (*DS102, error) {
	conn, err := scpi.Open(port, DefaultBaud,
		scpi.WithTerminator('\r'),
		scpi.WithWriteDelay(writeDelay),
	)
	if err != nil {
		return nil, err
	}
	return New(conn, axis)
}

// New builds the parameter table over an existing connection.
func New(conn param.Client, axis int) (*DS102, error) {
	if axis < 1 || axis > 6 {
		return nil, fmt.Errorf("axis must be 1-6, got %d", axis)
	}

	t, err := param.NewTable(conn,
		param.Spec{
			Name:   "driver_division",
			Label:  "Driver division",
			GetCmd: ":DRDIV?",
			SetFmt: ":DRDIV_%d",
			Parse:  param.Int,
			Check:  param.Ints(0, 15),
		},
		param.Spec{
			Name:   "data",
			Label:  "Data channel",
			GetCmd: ":DATA?",
			SetFmt: ":DATA_%d",
			Parse:  param.Int,
			Check:  param.Enum(1, 2),
		},
		param.Spec{
			Name:   "home_position",
			Label:  "Home position",
			GetCmd: ":HOMEP?",
			SetFmt: ":HOMEP_%v",
			Parse:  param.Float,
			Check:  param.Numbers(-99999999, 99999999),
		},
		param.Spec{
			Name:   "position",
			Label:  "Position",
			GetCmd: ":POS?",
			SetFmt: ":POS_%v",
			Parse:  param.Float,
			Check:  param.Numbers(-99999999, 99999999),
		},
		param.Spec{
			Name:   "pulse",
			Label:  "Pulse",
			GetCmd: "PULS?",
			SetFmt: "PULS %d",
			Parse:  param.Int,
			Check:  param.Ints(0, 99999999),
		},
		param.Spec{
			Name:   "pulse_absolute",
			Label:  "Pulse absolute",
			GetCmd: "PULSA?",
			SetFmt: "PULSA %d",
			Parse:  param.Int,
			Check:  param.Ints(-99999999, 99999999),
		},
		param.Spec{
			Name:   "select_speed",
			Label:  "Select speed",
			GetCmd: "SELSP?",
			SetFmt: "SELSP %d",
			Parse:  param.Int,
			Check:  param.Ints(0, 9),
		},
		param.Spec{
			Name:   "standard_resolution",
			Label:  "Standard resolution",
			GetCmd: "STANDARD?",
			SetFmt: "STANDARD %d",
			Parse:  param.Int,
			Check:  param.Ints(0, 99999999),
		},
		param.Spec{
			Name:   "unit",
			Label:  "Displayed unit",
			GetCmd: "UNI?",
			SetFmt: "UNI %s",
			Parse:  param.String,
			Check:  param.Enum("PULSe", "UM", "MM", "DEG", "MRAD"),
		},
		param.Spec{
			Name:   "cw_soft_limit_enable",
			Label:  "CW soft limit enable",
			GetCmd: fmt.Sprintf(":CWSoftLimitEnable_%d", axis),
			SetFmt: fmt.Sprintf(":CWSoftLimitEnable_%d %%d", axis),
			Parse:  param.Int,
			Check:  param.Enum(0, 1),
		},
		param.Spec{
			Name:   "cw_soft_limit_point",
			Label:  "CW soft limit point",
			GetCmd: fmt.Sprintf(":CWSoftLimitPoint_%d", axis),
			SetFmt: fmt.Sprintf(":CWSoftLimitPoint_%d %%d", axis),
			Parse:  param.Int,
			Check:  param.Ints(-99999999, 99999999),
		},
		param.Spec{
			Name:   "ccw_soft_limit_enable",
			Label:  "CCW soft limit enable",
			GetCmd: fmt.Sprintf(":CCWSoftLimitEnable_%d", axis),
			SetFmt: fmt.Sprintf(":CCWSoftLimitEnable_%d %%d", axis),
			Parse:  param.Int,
			Check:  param.Enum(0, 1),
		},
		param.Spec{
			Name:   "ccw_soft_limit_point",
			Label:  "CCW soft limit point",
			GetCmd: fmt.Sprintf(":CCWSoftLimitPoint_%d", axis),
			SetFmt: fmt.Sprintf(":CCWSoftLimitPoint_%d %%d", axis),
			Parse:  param.Int,
			Check:  param.Ints(-99999999, 99999999),
		},
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build DS102 parameter table")
	}

	return &DS102{conn: conn, params: t, axis: axis}, nil
}

// Params exposes the parameter table.
func (d *DS102) Params() *param.Table { return d.params }

// Axis returns the bound axis number.
func (d *DS102) Axis() int { return d.axis }

// Go drives the motor in the given direction.
func (d *DS102) Go(direction int) error {
	if direction < GoCW || direction > GoCCWJog {
		return pkgerrors.Wrapf(param.ErrInvalid, "direction %d", direction)
	}
	return d.conn.Command(":GO_%d", direction)
}

// GoAbsolute drives the motor to an absolute position.
func (d *DS102) GoAbsolute(position int) error {
	return d.conn.Command(":GOABS_%d", position)
}

// MoveAbsolute is GoAbsolute under the name the angle controller expects.
func (d *DS102) MoveAbsolute(position int) error {
	return d.GoAbsolute(position)
}

// Moving reports whether the axis is still driving.
func (d *DS102) Moving() (bool, error) {
	s, err := d.conn.Query(":MOTION?")
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to query motion status")
	}
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, pkgerrors.Wrapf(param.ErrParse, "motion status %q", s)
}

// Stop stops the bound axis.
func (d *DS102) Stop(mode int) error {
	if mode != StopEmergency && mode != StopReduction {
		return pkgerrors.Wrapf(param.ErrInvalid, "stop mode %d", mode)
	}
	return d.conn.Command(":STOP_%d", mode)
}

// StopAll stops every axis.
func (d *DS102) StopAll(mode int) error {
	if mode != StopEmergency && mode != StopReduction {
		return pkgerrors.Wrapf(param.ErrInvalid, "stop mode %d", mode)
	}
	return d.conn.Command("STOP_%d", mode)
}

// Reset restores all controller parameters to defaults. The controller needs
// a few seconds before it accepts the next command.
func (d *DS102) Reset() error {
	if err := d.conn.Command("*RST"); err != nil {
		return err
	}
	time.Sleep(5 * time.Second)
	return nil
}

// Close closes the serial connection when this axis owns one.
func (d *DS102) Close() error {
	if c, ok := d.conn.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
