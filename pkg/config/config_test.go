package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoopdev/ktaga-lab/pkg/magnet"
)

func writeRig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rig.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeRig(t, "daq:\n  device: sim\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Magnet.ReadSampleNum != 100 {
		t.Errorf("read_sample_num = %d, want default 100", cfg.Magnet.ReadSampleNum)
	}
	if cfg.Magnet.WriteArrayLength != 1000 {
		t.Errorf("write_array_length = %d, want default 1000", cfg.Magnet.WriteArrayLength)
	}
	if cfg.Magnet.Unit != string(magnet.Millitesla) {
		t.Errorf("unit = %q, want default mT", cfg.Magnet.Unit)
	}
	if cfg.Socket != DefaultSocketPath {
		t.Errorf("socket = %q, want default", cfg.Socket)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := writeRig(t, `
magnet:
  unit: Oe
  settle_time_ms: 50
angle:
  steps_per_degree: 400
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Magnet.Unit != string(magnet.Oersted) {
		t.Errorf("unit = %q, want Oe", cfg.Magnet.Unit)
	}
	mc := cfg.MagnetControllerConfig()
	if mc.SettleTime != 50*time.Millisecond {
		t.Errorf("settle time = %v, want 50ms", mc.SettleTime)
	}
	// Untouched sections keep their defaults.
	if mc.ReadSampleClock != 10000 {
		t.Errorf("read clock = %d, want 10000", mc.ReadSampleClock)
	}
	ac := cfg.AngleControllerConfig()
	if ac.StepsPerDegree != 400 {
		t.Errorf("steps per degree = %v, want 400", ac.StepsPerDegree)
	}
	if ac.MoveTimeout != 300*time.Second {
		t.Errorf("move timeout = %v, want 300s", ac.MoveTimeout)
	}
}

func TestLoadRejectsUnknownUnit(t *testing.T) {
	path := writeRig(t, "magnet:\n  unit: tesla\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestLoadRejectsDuplicateInstrumentNames(t *testing.T) {
	path := writeRig(t, `
instruments:
  - name: dmm
    driver: keysight34420a
    port: /dev/ttyUSB0
  - name: dmm
    driver: agilentE8251A
    port: /dev/ttyUSB1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate instrument names")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")
	cfg := Default()
	cfg.Stage.Port = "/dev/ttyUSB2"
	cfg.Instruments = []InstrumentConfig{
		{Name: "siggen", Driver: "agilentE8251A", Port: "/dev/ttyUSB0", Baud: 9600},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Stage.Port != "/dev/ttyUSB2" {
		t.Errorf("stage port = %q", got.Stage.Port)
	}
	if len(got.Instruments) != 1 || got.Instruments[0].Name != "siggen" {
		t.Errorf("instruments = %+v", got.Instruments)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
