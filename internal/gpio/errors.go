package gpio

import "errors"

// Sentinel errors for GPIO operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, gpio.ErrInvalidPin) {
//	    // Reject the command, leave outputs untouched
//	}
var (
	// ErrRequestFailed indicates a line could not be claimed from the chip.
	ErrRequestFailed = errors.New("gpio: line request failed")

	// ErrInvalidPin indicates a pin index outside the requested lines.
	ErrInvalidPin = errors.New("gpio: pin index out of range")

	// ErrWriteFailed indicates the kernel rejected a line value update.
	ErrWriteFailed = errors.New("gpio: line write failed")

	// ErrClosed indicates the chip has been closed.
	ErrClosed = errors.New("gpio: chip closed")
)
