// Package relay implements the MQTT relay bridge for Gray Logic.
//
// This package turns two-byte MQTT command payloads into GPIO pin writes
// driving a 16-channel active-low relay board. It is the domain core of
// the bridge daemon: decoding, channel-to-pin mapping, the active-low
// inversion, and health reporting all live here.
//
// # Architecture
//
// The bridge sits between controllers publishing commands and the relay
// hardware:
//
//	┌─────────────────┐          ┌─────────────────┐
//	│   Controllers   │   MQTT   │  Relay Bridge   │   GPIO
//	│  (wall panels,  │─────────►│   (this pkg)    │─────────► Relay Board
//	│   automations)  │          └─────────────────┘
//	└─────────────────┘
//
// # Command Encoding
//
// A command is exactly two bytes:
//
//	byte 0: channel, 1 through 16
//	byte 1: state, 0 switches off, any other value switches on
//
// Channel N drives pin index N-1. The board is active-low: switching a
// channel on drives its line low, switching off drives it high. Payloads
// of the wrong length or with a channel outside 1..16 are rejected,
// counted, and ignored; they never stop the bridge.
//
// # Ordering
//
// Commands are applied strictly in arrival order. The MQTT client
// delivers messages serially, and the bridge writes each pin before
// returning from the handler, so an on/off/on sequence always lands on
// the hardware as on/off/on.
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple goroutines.
package relay
