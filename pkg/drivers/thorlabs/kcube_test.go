package thorlabs

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

type mockDevice struct {
	calls    []string
	position float64

	connectErr  error
	settingsErr error
	pollErr     error
	enableErr   error
	velErr      error
	homeErr     error
	moveErr     error
}

func (m *mockDevice) Connect(serial string) error {
	m.calls = append(m.calls, "Connect:"+serial)
	return m.connectErr
}

func (m *mockDevice) WaitForSettingsInitialized(timeout time.Duration) error {
	m.calls = append(m.calls, "WaitForSettingsInitialized")
	return m.settingsErr
}

func (m *mockDevice) StartPolling(interval time.Duration) error {
	m.calls = append(m.calls, "StartPolling")
	return m.pollErr
}

func (m *mockDevice) EnableDevice() error {
	m.calls = append(m.calls, "EnableDevice")
	return m.enableErr
}

func (m *mockDevice) SetVelocityParams(minVelocity, maxVelocity, acceleration float64) error {
	m.calls = append(m.calls, "SetVelocityParams")
	return m.velErr
}

func (m *mockDevice) Home(timeout time.Duration) error {
	m.calls = append(m.calls, "Home")
	if m.homeErr == nil {
		m.position = 0
	}
	return m.homeErr
}

func (m *mockDevice) MoveTo(position float64, timeout time.Duration) error {
	m.calls = append(m.calls, "MoveTo")
	if m.moveErr == nil {
		m.position = position
	}
	return m.moveErr
}

func (m *mockDevice) Position() (float64, error) {
	return m.position, nil
}

func (m *mockDevice) StopPolling() {
	m.calls = append(m.calls, "StopPolling")
}

func (m *mockDevice) Disconnect() error {
	m.calls = append(m.calls, "Disconnect")
	return nil
}

func TestNewKCubeBringUpSequence(t *testing.T) {
	dev := &mockDevice{}
	k, err := NewKCube(dev, KCubeConfig{Serial: "26001234"})
	if err != nil {
		t.Fatalf("NewKCube: %v", err)
	}
	want := []string{
		"Connect:26001234",
		"WaitForSettingsInitialized",
		"StartPolling",
		"EnableDevice",
		"SetVelocityParams",
	}
	if !reflect.DeepEqual(dev.calls, want) {
		t.Fatalf("bring-up calls = %v, want %v", dev.calls, want)
	}
	if k.cfg.MaxVelocity != DefaultMaxVelocity || k.cfg.Acceleration != DefaultAcceleration {
		t.Fatalf("defaults not applied: %+v", k.cfg)
	}
}

func TestNewKCubeRequiresSerial(t *testing.T) {
	dev := &mockDevice{}
	if _, err := NewKCube(dev, KCubeConfig{}); err == nil {
		t.Fatal("expected error for missing serial")
	}
	if len(dev.calls) != 0 {
		t.Fatalf("device touched before validation: %v", dev.calls)
	}
}

func TestNewKCubeDisconnectsOnBringUpFailure(t *testing.T) {
	dev := &mockDevice{enableErr: errors.New("enable failed")}
	if _, err := NewKCube(dev, KCubeConfig{Serial: "26001234"}); err == nil {
		t.Fatal("expected bring-up error")
	}
	last := dev.calls[len(dev.calls)-1]
	if last != "Disconnect" {
		t.Fatalf("device left connected after failed bring-up, calls = %v", dev.calls)
	}
}

func TestMoveToAndPosition(t *testing.T) {
	dev := &mockDevice{}
	k, err := NewKCube(dev, KCubeConfig{Serial: "26001234"})
	if err != nil {
		t.Fatalf("NewKCube: %v", err)
	}
	if err := k.MoveTo(3.5); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	pos, err := k.Position()
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if pos != 3.5 {
		t.Fatalf("position = %v, want 3.5", pos)
	}
}

func TestHomeResetsPosition(t *testing.T) {
	dev := &mockDevice{position: 7.2}
	k, err := NewKCube(dev, KCubeConfig{Serial: "26001234"})
	if err != nil {
		t.Fatalf("NewKCube: %v", err)
	}
	if err := k.Home(); err != nil {
		t.Fatalf("Home: %v", err)
	}
	pos, _ := k.Position()
	if pos != 0 {
		t.Fatalf("position after home = %v, want 0", pos)
	}
}

func TestCloseStopsPollingBeforeDisconnect(t *testing.T) {
	dev := &mockDevice{}
	k, err := NewKCube(dev, KCubeConfig{Serial: "26001234"})
	if err != nil {
		t.Fatalf("NewKCube: %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	n := len(dev.calls)
	if n < 2 || dev.calls[n-2] != "StopPolling" || dev.calls[n-1] != "Disconnect" {
		t.Fatalf("shutdown calls = %v", dev.calls)
	}
}
