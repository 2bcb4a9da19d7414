package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
)

// consumerName is the consumer label attached to each requested line.
// It shows up in gpioinfo output, which helps when debugging line ownership.
const consumerName = "graylogic-relay"

// Level is the electrical state of an output line.
type Level int

const (
	// Low pulls the line to ground, energising an active-low relay.
	Low Level = 0

	// High releases an active-low relay. This is the idle state.
	High Level = 1
)

// String returns "low" or "high".
func (l Level) String() string {
	if l == Low {
		return "low"
	}
	return "high"
}

// Chip holds the output lines claimed from a single GPIO chip.
// The zero value is not usable; construct with Open.
//
// Thread Safety: All methods are safe for concurrent use.
type Chip struct {
	name   string
	lines  []*gpiocdev.Line
	mu     sync.Mutex
	closed bool
}

// Open claims every line in cfg.Lines as an output on cfg.Chip, driving each
// high as it is requested. Pin index i corresponds to cfg.Lines[i], so the
// configured order defines the channel-to-line mapping.
//
// If any line cannot be claimed, lines already claimed are released and an
// error wrapping ErrRequestFailed is returned. The caller should treat this
// as fatal: the hardware is not in a known state worth continuing with.
func Open(cfg config.GPIOConfig) (*Chip, error) {
	lines := make([]*gpiocdev.Line, 0, len(cfg.Lines))

	for pin, offset := range cfg.Lines {
		line, err := gpiocdev.RequestLine(cfg.Chip, offset,
			gpiocdev.AsOutput(int(High)),
			gpiocdev.WithConsumer(consumerName),
		)
		if err != nil {
			// Release everything claimed so far; a partial claim would
			// leave lines held by a process that is about to exit.
			for _, held := range lines {
				held.Close() //nolint:errcheck // Best effort cleanup on error path
			}
			return nil, fmt.Errorf("%w: pin %d (offset %d) on %s: %v",
				ErrRequestFailed, pin, offset, cfg.Chip, err)
		}
		lines = append(lines, line)
	}

	return &Chip{
		name:  cfg.Chip,
		lines: lines,
	}, nil
}

// WritePin sets the line for the given pin index to the given level.
//
// Returns ErrInvalidPin if pin is outside the claimed lines, ErrClosed if
// the chip has been closed, or an error wrapping ErrWriteFailed if the
// kernel rejects the update.
func (c *Chip) WritePin(pin int, level Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if pin < 0 || pin >= len(c.lines) {
		return fmt.Errorf("%w: %d (have %d lines)", ErrInvalidPin, pin, len(c.lines))
	}

	if err := c.lines[pin].SetValue(int(level)); err != nil {
		return fmt.Errorf("%w: pin %d: %v", ErrWriteFailed, pin, err)
	}

	return nil
}

// LineCount returns the number of lines claimed by Open.
func (c *Chip) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

// Name returns the chip identifier the lines were claimed from.
func (c *Chip) Name() string {
	return c.name
}

// Close releases all claimed lines. Output levels hold their last written
// state after release; relays are not forced off on shutdown.
//
// Close is idempotent. It returns the first release error encountered.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	for pin, line := range c.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("releasing pin %d: %w", pin, err)
		}
	}

	return firstErr
}
