package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSwitchEvent records an applied relay command.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Channel is tagged (16 values, cheap cardinality) so dashboards can
// group and filter per relay.
//
// Parameters:
//   - bridgeID: The bridge that applied the command (e.g., "relay")
//   - channel: Relay channel 1-16
//   - on: Resulting relay state
//
// Example:
//
//	client.WriteSwitchEvent("relay", 7, true)
func (c *Client) WriteSwitchEvent(bridgeID string, channel int, on bool) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if on {
		state = 1
	}

	point := write.NewPoint(
		"relay_switch",
		map[string]string{
			"bridge_id": bridgeID,
			"channel":   strconv.Itoa(channel),
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDecodeFailure records a payload the bridge rejected.
//
// Tracking rejects separately from switches makes a misbehaving
// controller visible: a burst of invalid_length points to a publisher
// sending the wrong format.
//
// Parameters:
//   - bridgeID: The bridge that rejected the payload
//   - reason: Failure class (e.g., "invalid_length", "channel_out_of_range")
//   - payloadLen: Length of the rejected payload in bytes
func (c *Client) WriteDecodeFailure(bridgeID string, reason string, payloadLen int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"relay_decode_failure",
		map[string]string{
			"bridge_id": bridgeID,
			"reason":    reason,
		},
		map[string]interface{}{
			"payload_len": payloadLen,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
