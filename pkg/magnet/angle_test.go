package magnet

import (
	"errors"
	"testing"
	"time"
)

type fakeMotor struct {
	movingPolls int // report "moving" this many times before "ready"
	polls       int
	moveErr     error
	statusErr   error
	lastTarget  int
}

func (m *fakeMotor) MoveAbsolute(position int) error {
	m.lastTarget = position
	return m.moveErr
}

func (m *fakeMotor) Moving() (bool, error) {
	m.polls++
	if m.statusErr != nil {
		return false, m.statusErr
	}
	if m.polls <= m.movingPolls {
		return true, nil
	}
	return false, nil
}

func fastConfig() AngleConfig {
	return AngleConfig{
		StepsPerDegree: 100,
		PollInterval:   time.Millisecond,
		MoveTimeout:    time.Second,
	}
}

func TestSetAnglePollsUntilReady(t *testing.T) {
	const k = 3
	motor := &fakeMotor{movingPolls: k}
	a := NewAngleController(motor, fastConfig())

	if err := a.SetAngle(90); err != nil {
		t.Fatalf("SetAngle failed: %v", err)
	}
	// K "moving" replies and one "ready" reply: exactly K+1 polls.
	if motor.polls != k+1 {
		t.Errorf("polled %d times, want %d", motor.polls, k+1)
	}
	if motor.lastTarget != 9000 {
		t.Errorf("moved to %d steps, want 9000", motor.lastTarget)
	}
	if a.Angle() != 90 {
		t.Errorf("Angle() = %v, want 90", a.Angle())
	}
}

func TestSetAngleImmediatelyReady(t *testing.T) {
	motor := &fakeMotor{movingPolls: 0}
	a := NewAngleController(motor, fastConfig())

	if err := a.SetAngle(-45); err != nil {
		t.Fatalf("SetAngle failed: %v", err)
	}
	if motor.polls != 1 {
		t.Errorf("polled %d times, want 1", motor.polls)
	}
	if motor.lastTarget != -4500 {
		t.Errorf("moved to %d steps, want -4500", motor.lastTarget)
	}
}

func TestSetAngleTimesOut(t *testing.T) {
	motor := &fakeMotor{movingPolls: 1 << 30}
	cfg := fastConfig()
	cfg.MoveTimeout = 10 * time.Millisecond
	a := NewAngleController(motor, cfg)

	err := a.SetAngle(10)
	if !errors.Is(err, ErrMoveTimeout) {
		t.Fatalf("SetAngle = %v, want ErrMoveTimeout", err)
	}
	if a.Angle() != 0 {
		t.Errorf("timed-out move updated the cached angle to %v", a.Angle())
	}
}

func TestSetAnglePropagatesMoveError(t *testing.T) {
	motor := &fakeMotor{moveErr: errors.New("axis fault")}
	a := NewAngleController(motor, fastConfig())

	if err := a.SetAngle(10); err == nil {
		t.Fatal("SetAngle succeeded despite move failure")
	}
	if motor.polls != 0 {
		t.Error("status polled after a failed move command")
	}
}

func TestSetAnglePropagatesStatusError(t *testing.T) {
	motor := &fakeMotor{statusErr: errors.New("serial timeout")}
	a := NewAngleController(motor, fastConfig())

	if err := a.SetAngle(10); err == nil {
		t.Fatal("SetAngle succeeded despite status query failure")
	}
}
