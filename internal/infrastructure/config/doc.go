// Package config handles loading and validating relay bridge configuration.
//
// This package manages:
//   - Loading operator configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The config file covers operator concerns only: MQTT connection tuning,
// GPIO line mapping, telemetry and journal settings, logging. The session
// itself (broker host and command topic) is resolved separately from
// settings.dat by the settings package and is never read from YAML.
//
// A missing config file is not an error: the daemon runs on built-in
// defaults. A present but malformed file is an error, because a mistyped
// operator config should fail loudly rather than be silently ignored.
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.ClientID)
package config
