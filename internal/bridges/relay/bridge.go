package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

// recordTimeout bounds journal writes so a stuck SD card cannot stall
// command handling forever.
const recordTimeout = 5 * time.Second

// Bridge translates MQTT relay commands into GPIO pin writes.
// It handles:
//   - Receiving two-byte commands from the configured topic
//   - Decoding, validating, and applying them to the relay pins
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	topic      string
	bridgeID   string
	qos        byte
	mqtt       MQTTClient
	pins       PinDriver
	controller *Controller
	telemetry  Telemetry // Optional time-series recording
	recorder   Recorder  // Optional local journal
	health     *HealthReporter

	// Operational counters, exposed through Stats
	commandsApplied atomic.Uint64
	decodeFailures  atomic.Uint64
	writeErrors     atomic.Uint64

	// Shutdown coordination
	stopOnce  sync.Once
	ctx       context.Context    // Bridge-level context, cancelled on Stop()
	ctxCancel context.CancelFunc // Cancel function for ctx

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// PinDriver drives the physical relay output lines.
// This interface is satisfied by *gpio.Chip.
type PinDriver interface {
	// WritePin sets one line to the given level.
	WritePin(pin int, level gpio.Level) error

	// LineCount returns the number of claimed lines.
	LineCount() int
}

// Telemetry records switching activity in a time-series store.
// This is optional - if nil, the bridge operates without telemetry.
type Telemetry interface {
	// WriteSwitchEvent records one applied command.
	WriteSwitchEvent(bridgeID string, channel int, on bool)

	// WriteDecodeFailure records one rejected payload.
	WriteDecodeFailure(bridgeID string, reason string, payloadLen int)
}

// Recorder persists switching activity to a local audit journal.
// This is optional - if nil, the bridge operates without journaling.
type Recorder interface {
	// RecordSwitch appends one applied command.
	RecordSwitch(ctx context.Context, channel int, on bool, pin int, level string) error

	// RecordDecodeFailure appends one rejected payload.
	RecordDecodeFailure(ctx context.Context, reason string, payload []byte) error
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// Topic is the command topic, the installer-chosen value from
	// settings.dat.
	Topic string

	// BridgeID identifies this bridge in health topics and telemetry.
	BridgeID string

	// Version is the bridge software version for health messages.
	Version string

	// QoS is the subscription QoS for the command topic.
	QoS byte

	// HealthInterval is how often health status is published.
	// Zero uses the reporter default of 30 seconds.
	HealthInterval time.Duration

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Pins is the relay pin driver.
	Pins PinDriver

	// Logger is optional structured logger.
	Logger Logger

	// Telemetry is optional time-series recording.
	// If nil, the bridge operates without telemetry.
	Telemetry Telemetry

	// Recorder is optional local journaling.
	// If nil, the bridge operates without a journal.
	Recorder Recorder
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Topic == "" {
		return nil, fmt.Errorf("command topic is required")
	}
	if opts.BridgeID == "" {
		return nil, fmt.Errorf("bridge ID is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Pins == nil {
		return nil, fmt.Errorf("pin driver is required")
	}
	if n := opts.Pins.LineCount(); n < ChannelCount {
		return nil, fmt.Errorf("pin driver has %d lines, need %d", n, ChannelCount)
	}

	controller, err := NewController(opts.Pins)
	if err != nil {
		return nil, fmt.Errorf("creating controller: %w", err)
	}

	// Create bridge-level context so in-flight journal writes are
	// cancelled on shutdown
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		topic:      opts.Topic,
		bridgeID:   opts.BridgeID,
		qos:        opts.QoS,
		mqtt:       opts.MQTTClient,
		pins:       opts.Pins,
		controller: controller,
		telemetry:  opts.Telemetry, // May be nil (optional)
		recorder:   opts.Recorder,  // May be nil (optional)
		ctx:        ctx,
		ctxCancel:  ctxCancel,
		logger:     opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.BridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Pins:      opts.Pins,
		Stats:     b,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the command topic and starts health reporting.
// All relay lines are already held released by the pin driver before
// this is called.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	if err := b.mqtt.Subscribe(b.topic, b.qos, b.handleMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", b.topic, "qos", b.qos)

	b.health.Start(ctx)

	b.logInfo("bridge started",
		"bridge_id", b.bridgeID,
		"channels", ChannelCount)

	return nil
}

// Stop gracefully shuts down the bridge.
// The relay pins are left at their last written levels; shutdown never
// switches anything.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		// Cancel bridge context to abort in-flight journal writes
		b.ctxCancel()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		stats := b.Stats()
		b.logInfo("bridge stopped",
			"commands_applied", stats.CommandsApplied,
			"decode_failures", stats.DecodeFailures,
			"write_errors", stats.WriteErrors)
	})
}

// Stats returns a snapshot of the bridge's operational counters.
func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		CommandsApplied: b.commandsApplied.Load(),
		DecodeFailures:  b.decodeFailures.Load(),
		WriteErrors:     b.writeErrors.Load(),
	}
}

// handleMessage processes one command payload. The MQTT client invokes
// handlers serially in arrival order, and the pin write happens before
// this returns, so command sequences reach the hardware in order.
func (b *Bridge) handleMessage(topic string, payload []byte) {
	// Raw bytes are logged before any validation so malformed traffic
	// is always visible in the record.
	b.logInfo("command received",
		"topic", topic,
		"payload", fmt.Sprintf("% X", payload),
		"bytes", len(payload))

	cmd, err := DecodeCommand(payload)
	if err != nil {
		b.rejectCommand(err, payload)
		return
	}

	b.applyCommand(cmd)
}

// rejectCommand counts and records an undecodable payload. Bad commands
// are dropped, never fatal.
func (b *Bridge) rejectCommand(decodeErr error, payload []byte) {
	b.decodeFailures.Add(1)

	reason := decodeFailureReason(decodeErr)
	b.logWarn("command rejected", "reason", reason, "error", decodeErr)

	if b.telemetry != nil {
		b.telemetry.WriteDecodeFailure(b.bridgeID, reason, len(payload))
	}

	if b.recorder != nil {
		ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
		if err := b.recorder.RecordDecodeFailure(ctx, reason, payload); err != nil {
			b.logError("journal write failed", err)
		}
		cancel()
	}
}

// applyCommand hands the command to the controller and records the
// outcome.
func (b *Bridge) applyCommand(cmd Command) {
	level := cmd.Level()

	if err := b.controller.Apply(cmd); err != nil {
		b.writeErrors.Add(1)
		b.logError("pin write failed", err,
			"channel", cmd.Channel,
			"pin", cmd.PinIndex())
		return
	}

	b.commandsApplied.Add(1)
	b.logInfo("relay switched",
		"channel", cmd.Channel,
		"state", cmd.StateString(),
		"pin", cmd.PinIndex(),
		"level", level.String())

	if b.telemetry != nil {
		b.telemetry.WriteSwitchEvent(b.bridgeID, int(cmd.Channel), cmd.On)
	}

	if b.recorder != nil {
		ctx, cancel := context.WithTimeout(b.ctx, recordTimeout)
		if err := b.recorder.RecordSwitch(ctx, int(cmd.Channel), cmd.On, cmd.PinIndex(), level.String()); err != nil {
			b.logError("journal write failed", err)
		}
		cancel()
	}
}

// decodeFailureReason maps a decode error to the reason tag used in
// telemetry and journal rows.
func decodeFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, ErrChannelOutOfRange):
		return "channel_out_of_range"
	default:
		return "decode_error"
	}
}

// SetLogger sets the logger for the bridge and its health reporter.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning message if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		args := append([]any{"error", err}, keysAndValues...)
		logger.Error(msg, args...)
	}
}
