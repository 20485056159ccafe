package keysight

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/hoopdev/ktaga-lab/pkg/param"
)

// Scope reads the averaged voltage of one channel of a DSOX2014A or
// DSOC2014A oscilloscope. The two models share the command set.
type Scope struct {
	conn    param.Client
	params  *param.Table
	model   string
	channel int
}

// NewDSOX2014A returns a Scope bound to the given channel.
func NewDSOX2014A(conn param.Client, channel int) (*Scope, error) {
	return newScope(conn, "DSOX2014A", channel)
}

// NewDSOC2014A returns a Scope bound to the given channel.
func NewDSOC2014A(conn param.Client, channel int) (*Scope, error) {
	return newScope(conn, "DSOC2014A", channel)
}

func newScope(conn param.Client, model string, channel int) (*Scope, error) {
	if channel < 1 || channel > 4 {
		return nil, fmt.Errorf("channel must be 1-4, got %d", channel)
	}
	t, err := param.NewTable(conn,
		param.Spec{
			Name:   "voltage",
			Label:  "Voltage",
			Unit:   "V",
			GetCmd: fmt.Sprintf("MEAS:VAV? CHAN%d", channel),
			Parse:  param.Float,
		},
	)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to build %s parameter table", model)
	}
	return &Scope{conn: conn, params: t, model: model, channel: channel}, nil
}

// Params exposes the parameter table.
func (s *Scope) Params() *param.Table { return s.params }

// Model returns the scope model.
func (s *Scope) Model() string { return s.model }

// Voltage returns the average voltage of the bound channel.
func (s *Scope) Voltage() (float64, error) { return s.params.GetFloat("voltage") }

// Reset issues *RST.
func (s *Scope) Reset() error { return s.conn.Command("*RST") }
