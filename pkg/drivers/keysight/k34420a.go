// Package keysight drives the Keysight bench instruments of the rig: the
// 34420A nanovoltmeter and the DSOX/DSOC2014A oscilloscopes.
package keysight

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoopdev/ktaga-lab/pkg/param"
)

// Per-model integration time steps (NPLC) and the resolution factor each one
// allows, as fractions of the active range.
var (
	nplcValues = map[string][]float64{
		"34420A": {0.02, 0.2, 1, 2, 10, 20, 100, 200},
	}
	resolutionFactors = map[string][]float64{
		"34420A": {1e-4, 1e-5, 3e-6, 2.2e-6, 1e-6, 8e-7, 3e-7, 2.2e-7},
	}
)

// Voltage ranges accepted by the 34420A.
var voltageRanges = []any{0.1, 1.0, 10.0, 100.0, 1000.0}

// K34420A is a nanovoltmeter on a SCPI connection.
type K34420A struct {
	conn    param.Client
	params  *param.Table
	model   string
	nplc    []float64
	resFact []float64
}

// New34420A identifies the instrument and builds its parameter table. Models
// without a known NPLC table are rejected.
func New34420A(conn param.Client) (*K34420A, error) {
	idn, err := conn.Query("*IDN?")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to identify instrument")
	}
	fields := strings.Split(idn, ",")
	if len(fields) < 2 {
		return nil, pkgerrors.Wrapf(param.ErrParse, "malformed identification %q", idn)
	}
	model := strings.TrimSpace(fields[1])

	nplc, ok := nplcValues[model]
	if !ok {
		return nil, fmt.Errorf("unsupported voltmeter model %q", model)
	}

	t, err := param.NewTable(conn,
		param.Spec{Name: "volt", Label: "Voltage", Unit: "V", GetCmd: "READ?", Parse: param.Float},
		param.Spec{Name: "fetch", Label: "Voltage", Unit: "V", GetCmd: "FETCH?", Parse: param.Float},
		// nplc and resolution are coupled; sets go through SetNPLC and
		// SetResolution below.
		param.Spec{Name: "nplc", Label: "Integration time", Unit: "NPLC", GetCmd: "VOLT:NPLC?", Parse: param.Float},
		param.Spec{Name: "resolution", Label: "Resolution", Unit: "V", GetCmd: "VOLT:DC:RES?", Parse: param.Float},
		param.Spec{
			Name:   "range",
			Label:  "Range",
			Unit:   "V",
			GetCmd: "SENS:VOLT:DC:RANG?",
			SetFmt: "SENS:VOLT:DC:RANG %f",
			Parse:  param.Float,
			Check:  param.Enum(voltageRanges...),
		},
		param.Spec{
			Name:   "range_auto",
			Label:  "Auto range",
			GetCmd: "VOLT:RANG:AUTO?",
			SetFmt: "VOLT:RANG:AUTO %s",
			Parse:  param.OnOff,
			Check:  param.Bool(),
			Format: param.OnOffFormat("1", "0"),
		},
		param.Spec{Name: "terminals", Label: "Terminals", GetCmd: "ROUT:TERM?", Parse: param.String},
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build 34420A parameter table")
	}

	return &K34420A{
		conn:    conn,
		params:  t,
		model:   model,
		nplc:    nplc,
		resFact: resolutionFactors[model],
	}, nil
}

// Params exposes the parameter table.
func (d *K34420A) Params() *param.Table { return d.params }

// Model returns the model string reported by *IDN?.
func (d *K34420A) Model() string { return d.model }

// Voltage triggers and reads one measurement (READ?).
func (d *K34420A) Voltage() (float64, error) { return d.params.GetFloat("volt") }

// Fetch reads data requested by a previous InitMeasurement. Do not call it
// without asking for data first.
func (d *K34420A) Fetch() (float64, error) { return d.params.GetFloat("fetch") }

// Range returns the active voltage range.
func (d *K34420A) Range() (float64, error) { return d.params.GetFloat("range") }

// SetRange selects a fixed voltage range.
func (d *K34420A) SetRange(v float64) error { return d.params.Set("range", v) }

// NPLC returns the integration time in power line cycles.
func (d *K34420A) NPLC() (float64, error) { return d.params.GetFloat("nplc") }

// SetNPLC sets the integration time. Resolution settings change with NPLC,
// so the cached resolution is re-read afterwards.
func (d *K34420A) SetNPLC(v float64) error {
	if err := param.Enum(anySlice(d.nplc)...)(v); err != nil {
		return pkgerrors.Wrap(err, "nplc")
	}
	if err := d.conn.Command("VOLT:NPLC %f", v); err != nil {
		return pkgerrors.Wrap(err, "failed to set NPLC")
	}
	_, err := d.Resolution()
	return err
}

// Resolution returns the measurement resolution in volts.
func (d *K34420A) Resolution() (float64, error) { return d.params.GetFloat("resolution") }

// SetResolution sets the resolution. Valid values depend on the active
// range; both sides are compared as short exponent strings to avoid floating
// point rounding mismatches, as the instrument does.
func (d *K34420A) SetResolution(v float64) error {
	rng, err := d.Range()
	if err != nil {
		return err
	}
	valid := make([]string, len(d.resFact))
	found := false
	for i, f := range d.resFact {
		valid[i] = fmt.Sprintf("%.1e", f*rng)
		if valid[i] == fmt.Sprintf("%.1e", v) {
			found = true
		}
	}
	if !found {
		return pkgerrors.Wrapf(param.ErrInvalid,
			"resolution %.1e not available at range %g (choose from %v)", v, rng, valid)
	}
	if err := d.conn.Command("VOLT:DC:RES %.1e", v); err != nil {
		return pkgerrors.Wrap(err, "failed to set resolution")
	}
	// NPLC settings change with resolution.
	_, err = d.NPLC()
	return err
}

// ClearErrors drains the instrument error queue, logging each entry until
// the queue reports "No error".
func (d *K34420A) ClearErrors() error {
	for {
		e, err := d.conn.Query("SYST:ERR?")
		if err != nil {
			return pkgerrors.Wrap(err, "failed to read error queue")
		}
		if strings.Contains(e, "No error") {
			return nil
		}
		logrus.Infof("34420A error queue: %s", e)
	}
}

// InitMeasurement arms a measurement to be collected later with Fetch.
func (d *K34420A) InitMeasurement() error {
	return d.conn.Command("INIT")
}

// Reset issues *RST.
func (d *K34420A) Reset() error {
	return d.conn.Command("*RST")
}

func anySlice(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
