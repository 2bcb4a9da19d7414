// Gray Logic Relay Bridge
//
// This is the main entry point for the relay bridge daemon. The bridge
// subscribes to a single MQTT topic and drives a 16-channel active-low
// relay board through GPIO lines:
//   - Two-byte commands select a channel (1-16) and a state (off/on)
//   - Every relay is released before the broker connection is opened
//   - Session parameters (broker host, command topic) come from settings.dat
//   - Optional InfluxDB telemetry and a local SQLite command journal
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/bridges/relay"
	"github.com/nerrad567/gray-logic-relay/internal/gpio"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-relay/internal/journal"
	"github.com/nerrad567/gray-logic-relay/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Relay Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Resolve the session from the settings file. A missing or unreadable
	// file is a degradation, not a failure: the built-in defaults carry the
	// session and the daemon keeps going.
	settingsPath := getSettingsPath()
	session, err := settings.Load(settingsPath)
	if err != nil {
		log.Info("settings file unavailable, using session defaults",
			"path", settingsPath,
			"error", err,
		)
	}
	log.Info("session resolved", "broker", session.Broker, "topic", session.Topic)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Claim the relay lines before any network activity so every relay is
	// released (driven high) ahead of the first command.
	chip, err := gpio.Open(cfg.GPIO)
	if err != nil {
		return fmt.Errorf("opening GPIO chip: %w", err)
	}
	defer func() {
		log.Info("releasing GPIO lines")
		if closeErr := chip.Close(); closeErr != nil {
			log.Error("error closing GPIO chip", "error", closeErr)
		}
	}()
	log.Info("relay lines claimed", "chip", chip.Name(), "lines", chip.LineCount())

	// Open the command journal (optional)
	jnl, err := journal.Open(cfg.Journal)
	switch {
	case errors.Is(err, journal.ErrDisabled):
		log.Info("journal disabled")
	case err != nil:
		log.Warn("journal unavailable, continuing without audit trail", "error", err)
	default:
		defer func() {
			log.Info("closing journal")
			if closeErr := jnl.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		log.Info("journal open", "path", jnl.Path())

		if cfg.Journal.RetentionDays > 0 {
			removed, pruneErr := jnl.Prune(ctx, time.Duration(cfg.Journal.RetentionDays)*24*time.Hour)
			if pruneErr != nil {
				log.Warn("journal prune failed", "error", pruneErr)
			} else if removed > 0 {
				log.Info("journal pruned",
					"rows", removed,
					"retention_days", cfg.Journal.RetentionDays,
				)
			}
		}
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	}

	// Connect to the MQTT broker named by the session. A broker that cannot
	// be reached at startup ends the session.
	mqttClient, err := mqtt.Connect(session.Broker, cfg.Bridge.ID, cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", session.Broker, cfg.MQTT.Port),
		"client_id", cfg.MQTT.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Start the relay bridge
	bridge, err := startRelayBridge(ctx, cfg, session, mqttClient, chip, influxClient, jnl, log)
	if err != nil {
		return fmt.Errorf("starting relay bridge: %w", err)
	}
	defer func() {
		log.Info("stopping relay bridge")
		bridge.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient, jnl); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup runs in reverse order:
	// 1. Relay bridge (stops health reporting)
	// 2. MQTT
	// 3. InfluxDB (if enabled)
	// 4. Journal (if enabled)
	// 5. GPIO lines (released holding their last level)

	log.Info("Gray Logic Relay Bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RELAYBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RELAYBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// getSettingsPath returns the session settings file path.
// Uses RELAYBRIDGE_SETTINGS environment variable if set, otherwise the
// conventional location next to the executable.
func getSettingsPath() string {
	if path := os.Getenv("RELAYBRIDGE_SETTINGS"); path != "" {
		return path
	}
	return settings.DefaultPath()
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - jnl: Command journal to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client, jnl *journal.Journal) error {
	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Check journal (if enabled)
	if jnl != nil {
		if err := jnl.HealthCheck(ctx); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	// GPIO health is implicit: every line was claimed and driven high during
	// open, and any later write failure surfaces through bridge statistics.

	return nil
}

// startRelayBridge initialises and starts the relay bridge.
//
// Parameters:
//   - ctx: Context for startup/cancellation
//   - cfg: Application configuration
//   - session: Resolved session (broker, command topic)
//   - mqttClient: MQTT client for subscribing/publishing
//   - chip: GPIO chip driving the relay lines
//   - influxClient: Telemetry client (may be nil if disabled)
//   - jnl: Command journal (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *relay.Bridge: Running relay bridge
//   - error: If the bridge fails to start
func startRelayBridge(ctx context.Context, cfg *config.Config, session settings.Session, mqttClient *mqtt.Client, chip *gpio.Chip, influxClient *influxdb.Client, jnl *journal.Journal, log *logging.Logger) (*relay.Bridge, error) {
	// Create MQTT adapter to satisfy the relay bridge interface
	mqttAdapter := &mqttBridgeAdapter{client: mqttClient}

	// #nosec G115 -- QoS is validated to 0..2 during config load
	qos := byte(cfg.MQTT.QoS)

	opts := relay.BridgeOptions{
		Topic:          session.Topic,
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		QoS:            qos,
		HealthInterval: cfg.GetHealthInterval(),
		MQTTClient:     mqttAdapter,
		Pins:           chip,
		Logger:         log,
	}

	// Optional collaborators are assigned only when present. Assigning a nil
	// *Client (or *Journal) directly would store a typed nil inside the
	// interface and defeat the bridge's nil checks.
	if influxClient != nil {
		opts.Telemetry = influxClient
	}
	if jnl != nil {
		opts.Recorder = jnl
	}

	bridge, err := relay.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating relay bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, err
	}
	log.Info("relay bridge started", "topic", session.Topic, "qos", cfg.MQTT.QoS)

	return bridge, nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the relay
// bridge's MQTTClient interface. The difference is the Subscribe handler
// signature:
//   - Infrastructure mqtt: func(topic string, payload []byte) error
//   - Relay bridge expects: func(topic string, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements relay.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements relay.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	// Wrap the void handler to return nil error (relay handlers don't return errors)
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements relay.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
