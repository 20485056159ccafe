package daemon

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/hoopdev/ktaga-lab/pkg/config"
	"github.com/hoopdev/ktaga-lab/pkg/daq"
	"github.com/hoopdev/ktaga-lab/pkg/drivers/agilent"
	"github.com/hoopdev/ktaga-lab/pkg/drivers/keysight"
	"github.com/hoopdev/ktaga-lab/pkg/drivers/suruga"
	"github.com/hoopdev/ktaga-lab/pkg/magnet"
	"github.com/hoopdev/ktaga-lab/pkg/param"
	"github.com/hoopdev/ktaga-lab/pkg/scpi"
)

// Rig is the assembled instrument set the daemon serves. Tests build one
// around fakes; OpenRig builds one from the rig file and real transports.
type Rig struct {
	Magnet      *magnet.Controller
	Angle       *magnet.AngleController
	Instruments map[string]*param.Table

	closers []func() error
}

// OpenRig opens every transport the rig file names and brings up the
// controllers. On any failure, transports opened so far are closed again.
func OpenRig(cfg *config.Config) (*Rig, error) {
	r := &Rig{Instruments: map[string]*param.Table{}}

	dev, err := openDAQ(cfg)
	if err != nil {
		return nil, err
	}

	r.Magnet, err = magnet.New(dev, cfg.MagnetControllerConfig())
	if err != nil {
		return nil, multierr.Append(pkgerrors.Wrap(err, "failed to bring up field controller"), r.Close())
	}

	if cfg.KCube.Serial != "" {
		// The Kinesis SDK is a Windows vendor DLL; no Go binding ships here.
		return nil, multierr.Append(
			pkgerrors.Errorf("KCube %s configured but no Kinesis backend is available on this platform", cfg.KCube.Serial),
			r.Close())
	}

	if cfg.Stage.Port != "" {
		stage, err := suruga.Open(cfg.Stage.Port, cfg.Stage.Axis)
		if err != nil {
			return nil, multierr.Append(pkgerrors.Wrap(err, "failed to open rotation stage"), r.Close())
		}
		r.closers = append(r.closers, stage.Close)
		r.Instruments["stage"] = stage.Params()
		r.Angle = magnet.NewAngleController(stage, cfg.AngleControllerConfig())
	}

	for _, inst := range cfg.Instruments {
		table, closer, err := openInstrument(inst)
		if err != nil {
			return nil, multierr.Append(pkgerrors.Wrapf(err, "failed to open instrument %s", inst.Name), r.Close())
		}
		r.closers = append(r.closers, closer)
		r.Instruments[inst.Name] = table
		logrus.WithFields(logrus.Fields{
			"name":   inst.Name,
			"driver": inst.Driver,
			"port":   inst.Port,
		}).Info("instrument connected")
	}

	return r, nil
}

func openDAQ(cfg *config.Config) (daq.Device, error) {
	switch cfg.DAQ.Device {
	case "sim":
		return daq.NewSimulated(0), nil
	default:
		return nil, pkgerrors.Errorf("unsupported DAQ device %q", cfg.DAQ.Device)
	}
}

func openInstrument(inst config.InstrumentConfig) (*param.Table, func() error, error) {
	conn, err := scpi.Open(inst.Port, inst.Baud)
	if err != nil {
		return nil, nil, err
	}

	var table *param.Table
	switch inst.Driver {
	case "agilentE8251A":
		var d *agilent.E8251A
		if d, err = agilent.NewE8251A(conn); err == nil {
			table = d.Params()
		}
	case "keysight34420A":
		var d *keysight.K34420A
		if d, err = keysight.New34420A(conn); err == nil {
			table = d.Params()
		}
	case "keysightDSOX2014A":
		var d *keysight.Scope
		if d, err = keysight.NewDSOX2014A(conn, inst.Channel); err == nil {
			table = d.Params()
		}
	case "keysightDSOC2014A":
		var d *keysight.Scope
		if d, err = keysight.NewDSOC2014A(conn, inst.Channel); err == nil {
			table = d.Params()
		}
	default:
		err = pkgerrors.Errorf("unknown driver %q", inst.Driver)
	}
	if err != nil {
		return nil, nil, multierr.Append(err, conn.Close())
	}

	return table, conn.Close, nil
}

// Shutdown ramps the field to zero and closes every transport. It is safe to
// call on a partially opened rig.
func (r *Rig) Shutdown() error {
	var err error
	if r.Magnet != nil {
		if ferr := r.Magnet.SetField(0); ferr != nil {
			err = multierr.Append(err, pkgerrors.Wrap(ferr, "failed to zero field"))
		}
	}
	return multierr.Append(err, r.Close())
}

func (r *Rig) Close() error {
	var err error
	for _, closer := range r.closers {
		err = multierr.Append(err, closer())
	}
	r.closers = nil
	return err
}
