package magnet

import (
	"errors"
	"testing"
	"time"

	"github.com/hoopdev/ktaga-lab/pkg/daq"
)

func testConfig() Config {
	return Config{
		OutputChannel: "Dev1/ao0",
		HallChannel:   "Dev1/ai0",
		Unit:          Oersted,
		SettleTime:    time.Millisecond,
	}
}

func TestNewZeroesOutput(t *testing.T) {
	sim := daq.NewSimulated(0)
	_, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	wf := sim.LastWaveform()
	if len(wf) != 1000 {
		t.Fatalf("zero waveform has %d samples, want 1000", len(wf))
	}
	for i, v := range wf {
		if v != 0 {
			t.Fatalf("zero waveform sample %d = %v, want 0", i, v)
		}
	}
}

func TestNewPropagatesOpenError(t *testing.T) {
	sim := daq.NewSimulated(0)
	sim.OpenErr = errors.New("device offline")

	if _, err := New(sim, testConfig()); err == nil {
		t.Fatal("New succeeded with an unopenable device")
	}
}

func TestSetFieldEmitsMonotonicRamp(t *testing.T) {
	sim := daq.NewSimulated(0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// 1784 Oe maps to roughly +5 V on the forward fit.
	field := 1784.0
	want := c.cal.FieldToVoltage(field)
	if want < 4 || want > 6 {
		t.Fatalf("test premise broken: %g Oe maps to %g V", field, want)
	}

	if err := c.SetField(field); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	wf := sim.LastWaveform()
	if len(wf) != 1000 {
		t.Fatalf("ramp has %d samples, want 1000", len(wf))
	}
	if wf[0] != 0 {
		t.Errorf("ramp starts at %v, want 0", wf[0])
	}
	if wf[len(wf)-1] != want {
		t.Errorf("ramp ends at %v, want %v", wf[len(wf)-1], want)
	}
	for i := 1; i < len(wf); i++ {
		if wf[i] <= wf[i-1] {
			t.Fatalf("ramp not monotonically increasing at sample %d: %v -> %v", i, wf[i-1], wf[i])
		}
	}
}

func TestSetFieldCachesSetpoint(t *testing.T) {
	sim := daq.NewSimulated(0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.SetField(250); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	// Field returns the cached setpoint, never a fresh read.
	inputsBefore := sim.InputOpens()
	if got := c.Field(); got != 250 {
		t.Errorf("Field() = %v, want 250", got)
	}
	if sim.InputOpens() != inputsBefore {
		t.Error("Field() touched the hardware")
	}

	// The next ramp starts from the previous commanded voltage.
	prev := c.Voltage()
	if err := c.SetField(500); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if wf := sim.LastWaveform(); wf[0] != prev {
		t.Errorf("second ramp starts at %v, want %v", wf[0], prev)
	}
}

func TestSetFieldRejectsOutOfRangeBeforeHardware(t *testing.T) {
	sim := daq.NewSimulated(0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	opens := sim.OutputOpens()

	// 4000 Oe maps well past +10 V.
	err = c.SetField(4000)
	if !errors.Is(err, ErrFieldRange) {
		t.Fatalf("SetField(4000) = %v, want ErrFieldRange", err)
	}
	if sim.OutputOpens() != opens {
		t.Error("out-of-range request still opened a hardware task")
	}
	if c.Field() != 0 || c.Voltage() != 0 {
		t.Error("rejected request mutated the commanded state")
	}
}

func TestSetFieldKeepsStateOnWriteFailure(t *testing.T) {
	sim := daq.NewSimulated(0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.SetField(100); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	sim.WriteErr = errors.New("waveform aborted")
	if err := c.SetField(200); err == nil {
		t.Fatal("SetField succeeded despite write failure")
	}
	if c.Field() != 100 {
		t.Errorf("failed write mutated setpoint: Field() = %v, want 100", c.Field())
	}
}

func TestMeasureFieldMeanOfConstantBatch(t *testing.T) {
	sim := daq.NewSimulated(1.0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := c.MeasureField()
	if err != nil {
		t.Fatalf("MeasureField failed: %v", err)
	}
	// A constant 1.0 V batch reduces to exactly the inverse fit at 1.0 V.
	if want := c.cal.VoltageToField(1.0); got != want {
		t.Errorf("MeasureField = %v, want %v", got, want)
	}
	if sim.InputOpens() != 1 {
		t.Errorf("MeasureField opened %d input tasks, want 1", sim.InputOpens())
	}
}

func TestMeasureFieldPropagatesReadError(t *testing.T) {
	sim := daq.NewSimulated(0)
	c, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sim.ReadErr = errors.New("acquisition fault")
	if _, err := c.MeasureField(); err == nil {
		t.Fatal("MeasureField succeeded despite read failure")
	}
}

func TestLinspace(t *testing.T) {
	got := linspace(0, 5, 1000)
	if len(got) != 1000 {
		t.Fatalf("len = %d, want 1000", len(got))
	}
	if got[0] != 0 || got[999] != 5 {
		t.Errorf("endpoints = %v, %v, want 0, 5", got[0], got[999])
	}

	if got := linspace(3, -3, 1); len(got) != 1 || got[0] != -3 {
		t.Errorf("degenerate linspace = %v, want [-3]", got)
	}
}
