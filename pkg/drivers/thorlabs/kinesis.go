// Package thorlabs drives the Thorlabs KST201 KCube stepper-motor
// controller. The vendor's Kinesis motion SDK sits behind the Device
// interface, so the driver logic stays testable without the SDK attached.
package thorlabs

import "time"

// Device is the narrow surface of the Kinesis SDK the driver needs. A real
// implementation binds the vendor library; tests use a mock.
type Device interface {
	Connect(serial string) error
	WaitForSettingsInitialized(timeout time.Duration) error
	StartPolling(interval time.Duration) error
	EnableDevice() error
	SetVelocityParams(minVelocity, maxVelocity, acceleration float64) error

	// Home and MoveTo block until the move completes or the timeout elapses.
	Home(timeout time.Duration) error
	MoveTo(position float64, timeout time.Duration) error
	Position() (float64, error)

	StopPolling()
	Disconnect() error
}
