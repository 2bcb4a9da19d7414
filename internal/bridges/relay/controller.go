package relay

import "fmt"

// Controller applies decoded commands to the relay board. It owns the
// active-low translation and is the only component that writes pins.
//
// The board energises a channel when its input line is driven low, so
// Apply inverts the logical state: on means Low, off means High. This
// mapping is a wiring contract with the relay board and must be
// preserved exactly.
type Controller struct {
	pins PinDriver
}

// NewController creates a controller around the given pin driver.
func NewController(pins PinDriver) (*Controller, error) {
	if pins == nil {
		return nil, ErrNilDriver
	}
	return &Controller{pins: pins}, nil
}

// Apply drives the command's pin to its active-low level.
// Exactly one pin write per call, no batching, no read-back.
func (c *Controller) Apply(cmd Command) error {
	pin := cmd.PinIndex()
	if pin < 0 || pin >= c.pins.LineCount() {
		return fmt.Errorf("%w: pin %d for channel %d", ErrInvalidPin, pin, cmd.Channel)
	}

	return c.pins.WritePin(pin, cmd.Level())
}
