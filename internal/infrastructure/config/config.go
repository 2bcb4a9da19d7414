package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// relayChannels is the number of channels on the relay board, and therefore
// the number of GPIO line offsets the configuration must provide.
const relayChannels = 16

// Config is the root configuration structure for the relay bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Journal  JournalConfig  `yaml:"journal"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains bridge identity and reporting settings.
type BridgeConfig struct {
	// ID is the bridge identifier used in health topics and telemetry tags.
	ID string `yaml:"id"`

	// HealthInterval is how often health status is published (seconds).
	HealthInterval int `yaml:"health_interval"`
}

// MQTTConfig contains MQTT connection settings.
//
// The broker host is deliberately absent: it comes from settings.dat via
// the settings package. Everything here tunes how that connection is made.
type MQTTConfig struct {
	Port      int                 `yaml:"port"`
	TLS       bool                `yaml:"tls"`
	ClientID  string              `yaml:"client_id"`
	KeepAlive int                 `yaml:"keepalive"`
	QoS       int                 `yaml:"qos"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// GPIOConfig contains the GPIO chip and line mapping for the relay board.
type GPIOConfig struct {
	// Chip is the GPIO character device name (e.g. "gpiochip0").
	Chip string `yaml:"chip"`

	// Lines maps relay channels 1..16 to GPIO line offsets: Lines[0] drives
	// channel 1, Lines[15] drives channel 16. Exactly 16 offsets required.
	Lines []int `yaml:"lines"`
}

// InfluxDBConfig contains InfluxDB connection settings for switching telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains settings for the local SQLite command journal.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays controls startup pruning. 0 disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing config file is not an error: the daemon runs on defaults plus
// environment overrides. A file that exists but cannot be read or parsed
// is an error.
//
// Environment variables follow the pattern: RELAYBRIDGE_SECTION_KEY
// For example: RELAYBRIDGE_MQTT_USERNAME, RELAYBRIDGE_LOG_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file is malformed or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file, if present
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Absent file: defaults carry the daemon
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:             "relay",
			HealthInterval: 30,
		},
		MQTT: MQTTConfig{
			Port:      1883,
			ClientID:  "graylogic-relay",
			KeepAlive: 60,
			QoS:       1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		GPIO: GPIOConfig{
			Chip:  "gpiochip0",
			Lines: defaultGPIOLines(),
		},
		Journal: JournalConfig{
			Enabled:       false,
			Path:          "./data/relay-journal.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// defaultGPIOLines returns the BCM line offsets matching the standard
// 16-channel relay board harness on a Raspberry Pi header. Lines[0] is
// channel 1 through Lines[15] for channel 16.
func defaultGPIOLines() []int {
	return []int{17, 18, 27, 22, 23, 24, 25, 4, 2, 3, 8, 7, 10, 9, 11, 14}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: RELAYBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("RELAYBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RELAYBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("RELAYBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Journal
	if v := os.Getenv("RELAYBRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Logging
	if v := os.Getenv("RELAYBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}
	if c.Bridge.HealthInterval <= 0 {
		errs = append(errs, "bridge.health_interval must be positive")
	}

	// MQTT validation
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		errs = append(errs, "mqtt.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive <= 0 {
		errs = append(errs, "mqtt.keepalive must be positive")
	}
	if c.MQTT.ClientID == "" {
		errs = append(errs, "mqtt.client_id is required")
	}

	// GPIO validation: the relay board has exactly 16 channels, each needing
	// its own line. Duplicate offsets would double-drive a line and the
	// kernel would reject the second request anyway.
	if c.GPIO.Chip == "" {
		errs = append(errs, "gpio.chip is required")
	}
	if len(c.GPIO.Lines) != relayChannels {
		errs = append(errs, fmt.Sprintf("gpio.lines must list exactly %d line offsets (got %d)",
			relayChannels, len(c.GPIO.Lines)))
	} else {
		seen := make(map[int]bool, relayChannels)
		for _, line := range c.GPIO.Lines {
			if line < 0 {
				errs = append(errs, fmt.Sprintf("gpio.lines contains negative offset %d", line))
				break
			}
			if seen[line] {
				errs = append(errs, fmt.Sprintf("gpio.lines contains duplicate offset %d", line))
				break
			}
			seen[line] = true
		}
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}
	if c.Journal.RetentionDays < 0 {
		errs = append(errs, "journal.retention_days must not be negative")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHealthInterval returns the health reporting interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Bridge.HealthInterval) * time.Second
}

// GetKeepAlive returns the MQTT keepalive interval as a Duration.
func (c *MQTTConfig) GetKeepAlive() time.Duration {
	return time.Duration(c.KeepAlive) * time.Second
}
