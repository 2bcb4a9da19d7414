package relay

import (
	"fmt"
	"time"
)

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthOffline indicates the bridge is not connected. Published by
	// the broker through the last will, never by the bridge itself.
	HealthOffline HealthStatus = "offline"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage reports bridge operational status.
// Topic: graylogic/health/{bridge_id}
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Bridge is the bridge identifier.
	Bridge string `json:"bridge"`

	// Timestamp is when the status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version,omitempty"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds,omitempty"`

	// Channels is the number of relay channels under control.
	Channels int `json:"channels,omitempty"`

	// Statistics contains operational counters.
	Statistics *BridgeStatistics `json:"statistics,omitempty"`

	// Reason explains the status (especially for offline/degraded).
	Reason string `json:"reason,omitempty"`
}

// BridgeStatistics contains operational counters for health messages.
type BridgeStatistics struct {
	// CommandsApplied is the number of commands written to the pins.
	CommandsApplied uint64 `json:"commands_applied"`

	// DecodeFailures is the number of rejected payloads.
	DecodeFailures uint64 `json:"decode_failures"`

	// WriteErrors is the number of failed pin writes.
	WriteErrors uint64 `json:"write_errors"`
}

// BridgeStats is a point-in-time snapshot of the bridge counters.
type BridgeStats struct {
	CommandsApplied uint64
	DecodeFailures  uint64
	WriteErrors     uint64
}

// NewHealthMessage creates a health status message.
func NewHealthMessage(bridgeID, version string, status HealthStatus, stats BridgeStats, startTime time.Time) HealthMessage {
	return HealthMessage{
		Bridge:        bridgeID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Channels:      ChannelCount,
		Statistics: &BridgeStatistics{
			CommandsApplied: stats.CommandsApplied,
			DecodeFailures:  stats.DecodeFailures,
			WriteErrors:     stats.WriteErrors,
		},
	}
}

// TopicPrefix is the base topic for all Gray Logic messages.
const TopicPrefix = "graylogic"

// HealthTopic returns the MQTT topic for a bridge's health status.
// Example: graylogic/health/relay
func HealthTopic(bridgeID string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, bridgeID)
}
