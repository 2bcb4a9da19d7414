package relay

import "errors"

// Domain errors for the relay bridge package.
var (
	// ErrInvalidLength is returned when a command payload is not exactly
	// two bytes.
	ErrInvalidLength = errors.New("relay: invalid command length")

	// ErrChannelOutOfRange is returned when a command names a channel
	// outside 1..16.
	ErrChannelOutOfRange = errors.New("relay: channel out of range")

	// ErrNilDriver is returned when a controller is created without a
	// pin driver.
	ErrNilDriver = errors.New("relay: nil pin driver")

	// ErrInvalidPin is returned when a command maps to a pin the driver
	// does not hold.
	ErrInvalidPin = errors.New("relay: invalid pin")
)
