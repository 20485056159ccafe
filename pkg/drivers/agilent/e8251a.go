// Package agilent drives the Agilent E8251A signal generator. The driver
// covers the commonly used subset of the instrument's SCPI command set and
// will most likely work for other Agilent sources.
package agilent

import (
	"math"

	pkgerrors "github.com/pkg/errors"

	"github.com/hoopdev/ktaga-lab/pkg/param"
)

// E8251A limits.
const (
	MinFrequency = 250e3 // Hz
	MaxFrequency = 20e9  // Hz
	MinPower     = -135  // dBm
	MaxPower     = 25    // dBm
)

// E8251A is a signal generator on a SCPI connection.
type E8251A struct {
	conn   param.Client
	params *param.Table
}

// NewE8251A builds the parameter table over the given connection.
func NewE8251A(conn param.Client) (*E8251A, error) {
	t, err := param.NewTable(conn,
		param.Spec{
			Name:   "frequency",
			Label:  "Frequency",
			Unit:   "Hz",
			GetCmd: "FREQ:CW?",
			SetFmt: "FREQ:CW %.4f",
			Parse:  param.Float,
			Check:  param.Numbers(MinFrequency, MaxFrequency),
		},
		param.Spec{
			Name:   "phase",
			Label:  "Phase",
			Unit:   "deg",
			GetCmd: "PHASE?",
			SetFmt: "PHASE %.8f",
			Parse:  param.Float,
			Check:  param.Numbers(-180, 180),
			// The instrument speaks radians; the accessor speaks degrees.
			GetXform: radToDeg,
			SetXform: degToRad,
		},
		param.Spec{
			Name:   "power",
			Label:  "Power",
			Unit:   "dBm",
			GetCmd: "POW:AMPL?",
			SetFmt: "POW:AMPL %.4f",
			Parse:  param.Float,
			Check:  param.Numbers(MinPower, MaxPower),
		},
		param.Spec{
			Name:   "output_enabled",
			Label:  "Output enabled",
			GetCmd: ":OUTP?",
			SetFmt: "OUTP %s",
			Parse:  param.OnOff,
			Check:  param.Bool(),
			Format: param.OnOffFormat("1", "0"),
		},
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build E8251A parameter table")
	}
	return &E8251A{conn: conn, params: t}, nil
}

// Params exposes the parameter table, e.g. to the daemon's generic routes.
func (d *E8251A) Params() *param.Table { return d.params }

// Identify queries *IDN?.
func (d *E8251A) Identify() (string, error) {
	return d.conn.Query("*IDN?")
}

// Frequency returns the CW frequency in Hz.
func (d *E8251A) Frequency() (float64, error) { return d.params.GetFloat("frequency") }

// SetFrequency sets the CW frequency in Hz.
func (d *E8251A) SetFrequency(hz float64) error { return d.params.Set("frequency", hz) }

// Phase returns the phase in degrees.
func (d *E8251A) Phase() (float64, error) { return d.params.GetFloat("phase") }

// SetPhase sets the phase in degrees.
func (d *E8251A) SetPhase(deg float64) error { return d.params.Set("phase", deg) }

// Power returns the output power in dBm.
func (d *E8251A) Power() (float64, error) { return d.params.GetFloat("power") }

// SetPower sets the output power in dBm.
func (d *E8251A) SetPower(dbm float64) error { return d.params.Set("power", dbm) }

// On enables the RF output.
func (d *E8251A) On() error { return d.params.Set("output_enabled", true) }

// Off disables the RF output.
func (d *E8251A) Off() error { return d.params.Set("output_enabled", false) }

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
