package config

import (
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hoopdev/ktaga-lab/pkg/magnet"
)

// DefaultSocketPath is where the daemon listens unless the rig file says
// otherwise.
const DefaultSocketPath = "/var/run/labd.sock"

type Config struct {
	Socket      string             `yaml:"socket"`
	DAQ         DAQConfig          `yaml:"daq"`
	Magnet      MagnetConfig       `yaml:"magnet"`
	Angle       AngleConfig        `yaml:"angle"`
	Stage       StageConfig        `yaml:"stage"`
	KCube       KCubeConfig        `yaml:"kcube"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

type DAQConfig struct {
	// Device selects the DAQ backend. "sim" runs without hardware.
	Device        string `yaml:"device"`
	OutputChannel string `yaml:"output_channel"`
	HallChannel   string `yaml:"hall_channel"`
}

type MagnetConfig struct {
	Unit             string `yaml:"unit"`
	ReadSampleNum    int    `yaml:"read_sample_num"`
	ReadSampleClock  int    `yaml:"read_sample_clock"`
	WriteSampleClock int    `yaml:"write_sample_clock"`
	WriteArrayLength int    `yaml:"write_array_length"`
	SettleTimeMs     int    `yaml:"settle_time_ms"`
}

type AngleConfig struct {
	StepsPerDegree float64 `yaml:"steps_per_degree"`
	PollIntervalMs int     `yaml:"poll_interval_ms"`
	MoveTimeoutS   int     `yaml:"move_timeout_s"`
}

type StageConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	Axis int    `yaml:"axis"`
}

type KCubeConfig struct {
	Serial       string  `yaml:"serial"`
	MaxVelocity  float64 `yaml:"max_velocity"`
	Acceleration float64 `yaml:"acceleration"`
}

type InstrumentConfig struct {
	Name    string `yaml:"name"`
	Driver  string `yaml:"driver"`
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
	Channel int    `yaml:"channel"`
}

func Default() *Config {
	return &Config{
		Socket: DefaultSocketPath,
		DAQ: DAQConfig{
			Device:        "sim",
			OutputChannel: "Dev1/ao0",
			HallChannel:   "Dev1/ai0",
		},
		Magnet: MagnetConfig{
			Unit:             string(magnet.Millitesla),
			ReadSampleNum:    100,
			ReadSampleClock:  10000,
			WriteSampleClock: 100000,
			WriteArrayLength: 1000,
			SettleTimeMs:     100,
		},
		Angle: AngleConfig{
			StepsPerDegree: 1000,
			PollIntervalMs: 1000,
			MoveTimeoutS:   300,
		},
		Stage: StageConfig{
			Baud: 9600,
			Axis: 1,
		},
	}
}

// Load reads a rig file on top of the defaults, so a partial file only
// overrides what it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

func (c *Config) Validate() error {
	switch magnet.Unit(c.Magnet.Unit) {
	case magnet.Oersted, magnet.Millitesla:
	default:
		return pkgerrors.Errorf("unknown field unit %q", c.Magnet.Unit)
	}
	if c.Magnet.ReadSampleNum <= 0 {
		return pkgerrors.Errorf("read_sample_num must be positive, got %d", c.Magnet.ReadSampleNum)
	}
	if c.Magnet.WriteArrayLength < 2 {
		return pkgerrors.Errorf("write_array_length must be at least 2, got %d", c.Magnet.WriteArrayLength)
	}
	if c.Angle.StepsPerDegree <= 0 {
		return pkgerrors.Errorf("steps_per_degree must be positive, got %g", c.Angle.StepsPerDegree)
	}
	if c.Stage.Axis < 1 || c.Stage.Axis > 6 {
		return pkgerrors.Errorf("stage axis must be 1-6, got %d", c.Stage.Axis)
	}
	seen := map[string]bool{}
	for _, inst := range c.Instruments {
		if inst.Name == "" {
			return pkgerrors.New("instrument with empty name")
		}
		if seen[inst.Name] {
			return pkgerrors.Errorf("duplicate instrument name %q", inst.Name)
		}
		seen[inst.Name] = true
	}
	return nil
}

// MagnetControllerConfig converts the rig file settings into the controller's
// own config type.
func (c *Config) MagnetControllerConfig() magnet.Config {
	return magnet.Config{
		OutputChannel:    c.DAQ.OutputChannel,
		HallChannel:      c.DAQ.HallChannel,
		Unit:             magnet.Unit(c.Magnet.Unit),
		ReadSampleNum:    c.Magnet.ReadSampleNum,
		ReadSampleClock:  c.Magnet.ReadSampleClock,
		WriteSampleClock: c.Magnet.WriteSampleClock,
		WriteArrayLength: c.Magnet.WriteArrayLength,
		SettleTime:       time.Duration(c.Magnet.SettleTimeMs) * time.Millisecond,
	}
}

func (c *Config) AngleControllerConfig() magnet.AngleConfig {
	return magnet.AngleConfig{
		StepsPerDegree: c.Angle.StepsPerDegree,
		PollInterval:   time.Duration(c.Angle.PollIntervalMs) * time.Millisecond,
		MoveTimeout:    time.Duration(c.Angle.MoveTimeoutS) * time.Second,
	}
}
