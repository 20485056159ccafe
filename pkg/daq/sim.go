package daq

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Simulated is an in-memory Device. It records every waveform written and
// serves canned samples on reads, so controllers can be exercised without a
// DAQ board attached. It also backs the daemon when no hardware is
// configured.
type Simulated struct {
	mu sync.Mutex

	// ReadSample is the constant voltage served to input tasks.
	ReadSample float64

	// Error injection. When non-nil the corresponding operation fails.
	OpenErr  error
	WriteErr error
	ReadErr  error

	outputOpens int
	inputOpens  int
	waveforms   [][]float64
}

var _ Device = (*Simulated)(nil)

// NewSimulated returns a Simulated device whose input channel reads the
// given constant voltage.
func NewSimulated(readSample float64) *Simulated {
	return &Simulated{ReadSample: readSample}
}

// OutputTask implements Device.
func (s *Simulated) OutputTask(channel string, minVolt, maxVolt float64, sampleClock int) (OutputTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.outputOpens++

	logrus.WithFields(logrus.Fields{
		"channel": channel,
		"clock":   sampleClock,
	}).Trace("simulated output task opened")

	return &simOutputTask{dev: s}, nil
}

// InputTask implements Device.
func (s *Simulated) InputTask(channel string, minVolt, maxVolt float64, sampleClock int) (InputTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.inputOpens++

	logrus.WithFields(logrus.Fields{
		"channel": channel,
		"clock":   sampleClock,
	}).Trace("simulated input task opened")

	return &simInputTask{dev: s}, nil
}

// OutputOpens returns how many output tasks have been opened.
func (s *Simulated) OutputOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputOpens
}

// InputOpens returns how many input tasks have been opened.
func (s *Simulated) InputOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputOpens
}

// Waveforms returns every waveform written so far, oldest first.
func (s *Simulated) Waveforms() [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]float64, len(s.waveforms))
	copy(out, s.waveforms)
	return out
}

// LastWaveform returns the most recently written waveform, or nil.
func (s *Simulated) LastWaveform() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waveforms) == 0 {
		return nil
	}
	return s.waveforms[len(s.waveforms)-1]
}

type simOutputTask struct {
	dev    *Simulated
	closed bool
}

func (t *simOutputTask) Write(samples []float64) error {
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()

	if t.dev.WriteErr != nil {
		return t.dev.WriteErr
	}
	cp := make([]float64, len(samples))
	copy(cp, samples)
	t.dev.waveforms = append(t.dev.waveforms, cp)
	return nil
}

func (t *simOutputTask) Close() error {
	t.closed = true
	return nil
}

type simInputTask struct {
	dev    *Simulated
	closed bool
}

func (t *simInputTask) Read(n int) ([]float64, error) {
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()

	if t.dev.ReadErr != nil {
		return nil, t.dev.ReadErr
	}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = t.dev.ReadSample
	}
	return samples, nil
}

func (t *simInputTask) Close() error {
	t.closed = true
	return nil
}
