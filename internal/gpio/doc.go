// Package gpio drives the relay board outputs through the Linux GPIO
// character device.
//
// Each relay channel maps to one output line on a GPIO chip. The board is
// active-low: driving a line low energises the relay coil, driving it high
// releases it. Callers work in Level terms and never touch raw integers.
//
// # Initialisation
//
// Open requests every configured line as an output and latches it high, so
// all relays are released before any command source is connected. A failure
// to claim any line is fatal; there is no partial operation with some
// channels unavailable.
//
// # Usage
//
//	pins, err := gpio.Open(cfg.GPIO)
//	if err != nil {
//	    return fmt.Errorf("claiming gpio lines: %w", err)
//	}
//	defer pins.Close()
//
//	err = pins.WritePin(0, gpio.Low) // energise channel 1
//
// The line count and offsets come from configuration, which validates them
// before Open runs. WritePin bounds-checks the pin index against whatever
// was actually requested.
package gpio
