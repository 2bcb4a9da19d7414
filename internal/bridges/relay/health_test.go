package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// mockPublisher implements HealthPublisher for testing.
type mockPublisher struct {
	mu        sync.Mutex
	connected bool
	messages  []publishedMessage
}

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func newMockPublisher(connected bool) *mockPublisher {
	return &mockPublisher{connected: connected}
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMessage{
		topic:    topic,
		payload:  payload,
		qos:      qos,
		retained: retained,
	})
	return nil
}

func (m *mockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockPublisher) getMessages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]publishedMessage, len(m.messages))
	copy(result, m.messages)
	return result
}

// stubStats implements StatsSource with fixed counters.
type stubStats struct {
	stats BridgeStats
}

func (s *stubStats) Stats() BridgeStats {
	return s.stats
}

func TestNewHealthReporter(t *testing.T) {
	pub := newMockPublisher(true)

	cfg := HealthReporterConfig{
		BridgeID:  "test-bridge",
		Version:   "1.0.0",
		Interval:  5 * time.Second,
		Publisher: pub,
		Pins:      newMockPinDriver(),
	}

	hr := NewHealthReporter(cfg)

	if hr.bridgeID != "test-bridge" {
		t.Errorf("bridgeID = %q, want test-bridge", hr.bridgeID)
	}
	if hr.version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", hr.version)
	}
	if hr.interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", hr.interval)
	}
}

func TestHealthReporterDefaultInterval(t *testing.T) {
	cfg := HealthReporterConfig{
		BridgeID: "test-bridge",
		// Interval not set, should default to 30 seconds
	}

	hr := NewHealthReporter(cfg)

	if hr.interval != 30*time.Second {
		t.Errorf("default interval = %v, want 30s", hr.interval)
	}
}

func TestHealthReporterPublishNow(t *testing.T) {
	pub := newMockPublisher(true)

	cfg := HealthReporterConfig{
		BridgeID:  "health-test",
		Version:   "2.0.0",
		Publisher: pub,
		Pins:      newMockPinDriver(),
		Stats: &stubStats{stats: BridgeStats{
			CommandsApplied: 42,
			DecodeFailures:  3,
			WriteErrors:     1,
		}},
	}

	hr := NewHealthReporter(cfg)

	if err := hr.PublishNow(); err != nil {
		t.Fatalf("PublishNow failed: %v", err)
	}

	messages := pub.getMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	msg := messages[0]
	if msg.topic != "graylogic/health/health-test" {
		t.Errorf("topic = %q, want graylogic/health/health-test", msg.topic)
	}
	if msg.qos != 1 {
		t.Errorf("qos = %d, want 1", msg.qos)
	}
	if !msg.retained {
		t.Error("message should be retained")
	}

	// Parse and verify content
	var health HealthMessage
	if err := json.Unmarshal(msg.payload, &health); err != nil {
		t.Fatalf("failed to unmarshal health message: %v", err)
	}

	if health.Bridge != "health-test" {
		t.Errorf("Bridge = %q, want health-test", health.Bridge)
	}
	if health.Status != HealthHealthy {
		t.Errorf("Status = %q, want %q", health.Status, HealthHealthy)
	}
	if health.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", health.Version)
	}
	if health.Channels != ChannelCount {
		t.Errorf("Channels = %d, want %d", health.Channels, ChannelCount)
	}
	if health.Statistics == nil {
		t.Fatal("Statistics missing")
	}
	if health.Statistics.CommandsApplied != 42 {
		t.Errorf("CommandsApplied = %d, want 42", health.Statistics.CommandsApplied)
	}
	if health.Statistics.DecodeFailures != 3 {
		t.Errorf("DecodeFailures = %d, want 3", health.Statistics.DecodeFailures)
	}
	if health.Statistics.WriteErrors != 1 {
		t.Errorf("WriteErrors = %d, want 1", health.Statistics.WriteErrors)
	}
}

func TestHealthReporterDegradedWhenMQTTDisconnected(t *testing.T) {
	pub := newMockPublisher(false) // Disconnected

	cfg := HealthReporterConfig{
		BridgeID:  "test-bridge",
		Publisher: pub,
		Pins:      newMockPinDriver(),
	}

	hr := NewHealthReporter(cfg)
	hr.PublishNow() //nolint:errcheck // Mock publisher accepts everything

	messages := pub.getMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var health HealthMessage
	if err := json.Unmarshal(messages[0].payload, &health); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if health.Status != HealthDegraded {
		t.Errorf("Status = %q, want %q", health.Status, HealthDegraded)
	}
	if health.Reason != "mqtt disconnected" {
		t.Errorf("Reason = %q, want mqtt disconnected", health.Reason)
	}
}

func TestHealthReporterDegradedWhenPinsUnavailable(t *testing.T) {
	pub := newMockPublisher(true)
	pins := newMockPinDriver()
	pins.lineCount = 0

	cfg := HealthReporterConfig{
		BridgeID:  "test-bridge",
		Publisher: pub,
		Pins:      pins,
	}

	hr := NewHealthReporter(cfg)
	hr.PublishNow() //nolint:errcheck // Mock publisher accepts everything

	var health HealthMessage
	messages := pub.getMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if err := json.Unmarshal(messages[0].payload, &health); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if health.Status != HealthDegraded {
		t.Errorf("Status = %q, want %q", health.Status, HealthDegraded)
	}
	if health.Reason != "relay lines unavailable" {
		t.Errorf("Reason = %q, want relay lines unavailable", health.Reason)
	}
}

func TestHealthReporterPublishStarting(t *testing.T) {
	pub := newMockPublisher(true)

	cfg := HealthReporterConfig{
		BridgeID:  "test-bridge",
		Publisher: pub,
	}

	hr := NewHealthReporter(cfg)
	if err := hr.PublishStarting(); err != nil {
		t.Fatalf("PublishStarting failed: %v", err)
	}

	messages := pub.getMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var health HealthMessage
	if err := json.Unmarshal(messages[0].payload, &health); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if health.Status != HealthStarting {
		t.Errorf("Status = %q, want %q", health.Status, HealthStarting)
	}
	if health.Reason != "bridge starting" {
		t.Errorf("Reason = %q, want bridge starting", health.Reason)
	}
}

func TestHealthReporterStartStop(t *testing.T) {
	pub := newMockPublisher(true)

	cfg := HealthReporterConfig{
		BridgeID:  "lifecycle-test",
		Interval:  50 * time.Millisecond, // Short interval for testing
		Publisher: pub,
		Pins:      newMockPinDriver(),
	}

	hr := NewHealthReporter(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hr.Start(ctx)

	// Wait for at least 2 health reports
	time.Sleep(150 * time.Millisecond)

	hr.Stop()

	messages := pub.getMessages()
	// Should have: initial + at least 2 periodic + stopping
	if len(messages) < 3 {
		t.Errorf("expected at least 3 messages, got %d", len(messages))
	}

	// Verify last message is stopping
	var lastHealth HealthMessage
	if err := json.Unmarshal(messages[len(messages)-1].payload, &lastHealth); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if lastHealth.Status != HealthStopping {
		t.Errorf("last Status = %q, want %q", lastHealth.Status, HealthStopping)
	}

	// Calling Stop again should be safe (sync.Once)
	hr.Stop()
}

func TestHealthReporterWithNoPublisher(t *testing.T) {
	cfg := HealthReporterConfig{
		BridgeID:  "no-publisher",
		Publisher: nil, // No publisher
	}

	hr := NewHealthReporter(cfg)

	// Should not panic or error
	if err := hr.PublishNow(); err != nil {
		t.Errorf("PublishNow with nil publisher should not error: %v", err)
	}
}

func TestHealthReporterUptimeCalculation(t *testing.T) {
	pub := newMockPublisher(true)

	cfg := HealthReporterConfig{
		BridgeID:  "uptime-test",
		Publisher: pub,
		Pins:      newMockPinDriver(),
	}

	hr := NewHealthReporter(cfg)
	hr.startTime = time.Now().Add(-65 * time.Second)

	if err := hr.PublishNow(); err != nil {
		t.Fatalf("PublishNow failed: %v", err)
	}

	messages := pub.getMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var health HealthMessage
	if err := json.Unmarshal(messages[0].payload, &health); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if health.UptimeSeconds < 65 {
		t.Errorf("UptimeSeconds = %d, want >= 65", health.UptimeSeconds)
	}
}
