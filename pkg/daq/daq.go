// Package daq abstracts the analog I/O hardware behind the electromagnet:
// a device hands out single-use tasks that either emit a timed voltage
// waveform on an output channel or acquire a batch of samples from an input
// channel. Every task must be closed, even when a write or read fails.
package daq

// Device opens analog I/O tasks on a data-acquisition board.
type Device interface {
	// OutputTask configures an analog output channel for a timed waveform
	// write at the given sample clock rate (samples/s), clamped to the
	// [minVolt, maxVolt] output range.
	OutputTask(channel string, minVolt, maxVolt float64, sampleClock int) (OutputTask, error)

	// InputTask configures an analog input channel for sampled acquisition
	// at the given sample clock rate (samples/s).
	InputTask(channel string, minVolt, maxVolt float64, sampleClock int) (InputTask, error)
}

// OutputTask is a configured analog output channel.
type OutputTask interface {
	// Write emits the samples as one timed waveform and blocks until the
	// hardware reports the waveform fully written.
	Write(samples []float64) error
	Close() error
}

// InputTask is a configured analog input channel.
type InputTask interface {
	// Read acquires n samples and blocks until they are all available.
	Read(n int) ([]float64, error)
	Close() error
}
