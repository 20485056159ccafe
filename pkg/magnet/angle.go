package magnet

import (
	"errors"
	"math"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrMoveTimeout is returned when the motor is still reporting motion after
// the configured maximum wait.
var ErrMoveTimeout = errors.New("motor did not reach target in time")

// Motor is the motion surface the angle controller drives. The DS102 stage
// driver implements it.
type Motor interface {
	// MoveAbsolute commands a move to an absolute step position.
	MoveAbsolute(position int) error
	// Moving reports whether the axis is still driving.
	Moving() (bool, error)
}

// AngleConfig holds the rotating-magnet geometry and polling bounds.
type AngleConfig struct {
	// StepsPerDegree converts a target angle to a motor step position.
	StepsPerDegree float64
	// PollInterval is slept between motion status queries.
	PollInterval time.Duration
	// MoveTimeout bounds the wait for the motor to stop. Exceeding it
	// returns ErrMoveTimeout.
	MoveTimeout time.Duration
}

func (c *AngleConfig) applyDefaults() {
	if c.StepsPerDegree == 0 {
		c.StepsPerDegree = 1000
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}
	if c.MoveTimeout == 0 {
		c.MoveTimeout = 5 * time.Minute
	}
}

// AngleController rotates the magnet to a target in-plane angle by driving
// the stage motor and waiting for it to report ready.
type AngleController struct {
	motor Motor
	cfg   AngleConfig
	angle float64
}

// NewAngleController returns a controller over the given motor.
func NewAngleController(motor Motor, cfg AngleConfig) *AngleController {
	cfg.applyDefaults()
	return &AngleController{motor: motor, cfg: cfg}
}

// SetAngle moves to the target angle in degrees and blocks until the motor
// reports ready or the move times out.
func (a *AngleController) SetAngle(deg float64) error {
	pos := int(math.Round(deg * a.cfg.StepsPerDegree))
	if err := a.motor.MoveAbsolute(pos); err != nil {
		return pkgerrors.Wrapf(err, "failed to move to %g deg", deg)
	}
	if err := a.waitReady(); err != nil {
		return err
	}
	a.angle = deg

	logrus.WithFields(logrus.Fields{
		"angle":    deg,
		"position": pos,
	}).Debug("angle setpoint reached")

	return nil
}

// Angle returns the last commanded angle in degrees.
func (a *AngleController) Angle() float64 {
	return a.angle
}

// waitReady polls the motor status until it stops moving. The wait is
// bounded: a motor still moving past MoveTimeout surfaces as ErrMoveTimeout
// rather than blocking forever.
func (a *AngleController) waitReady() error {
	deadline := time.Now().Add(a.cfg.MoveTimeout)
	for {
		moving, err := a.motor.Moving()
		if err != nil {
			return pkgerrors.Wrap(err, "failed to query motion status")
		}
		if !moving {
			return nil
		}
		if !time.Now().Before(deadline) {
			return pkgerrors.Wrapf(ErrMoveTimeout, "after %s", a.cfg.MoveTimeout)
		}
		time.Sleep(a.cfg.PollInterval)
	}
}
