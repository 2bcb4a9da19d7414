package relay

import (
	"fmt"

	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

// ChannelCount is the number of relay channels on the board.
const ChannelCount = 16

// commandLength is the exact size of a valid command payload.
const commandLength = 2

// Command is a decoded relay switching command.
type Command struct {
	// Channel is the relay channel, 1 through ChannelCount.
	Channel uint8

	// On is the requested logical state.
	On bool
}

// DecodeCommand parses a raw MQTT payload into a Command.
//
// The payload must be exactly two bytes: channel then state. Length is
// checked before the channel value, so a wrong-sized payload reports
// ErrInvalidLength even when its first byte is also out of range.
func DecodeCommand(payload []byte) (Command, error) {
	if len(payload) != commandLength {
		return Command{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(payload), commandLength)
	}

	channel := payload[0]
	if channel == 0 || channel > ChannelCount {
		return Command{}, fmt.Errorf("%w: channel %d", ErrChannelOutOfRange, channel)
	}

	return Command{
		Channel: channel,
		On:      payload[1] != 0,
	}, nil
}

// PinIndex returns the zero-based pin index for the command's channel.
// Channel 1 drives pin 0 through channel 16 driving pin 15.
func (c Command) PinIndex() int {
	return int(c.Channel) - 1
}

// Level returns the physical line level implementing the command.
// The relay board is active-low: on drives the line low, off drives it
// high.
func (c Command) Level() gpio.Level {
	if c.On {
		return gpio.Low
	}
	return gpio.High
}

// StateString renders the logical state for logs and journal rows.
func (c Command) StateString() string {
	if c.On {
		return "on"
	}
	return "off"
}
