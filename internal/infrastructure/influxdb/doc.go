// Package influxdb provides InfluxDB connectivity for the relay bridge.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes, and health monitoring.
//
// # Purpose
//
// This package records switching telemetry:
//   - Every applied relay command (channel, resulting state)
//   - Rejected payloads that failed decoding
//
// A Grafana dashboard over this bucket answers "when did channel 7 last
// switch" and "which controller keeps sending garbage" without shell
// access to the Pi.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled when not configured; the bridge runs fine without it
//	}
//	defer client.Close()
//
//	client.WriteSwitchEvent("relay", 7, true)
//
// # Error Handling
//
// Write operations are non-blocking; batch errors arrive via SetOnError.
// Connection and health check errors are returned directly. Telemetry is
// strictly optional: a down InfluxDB never blocks relay switching.
package influxdb
