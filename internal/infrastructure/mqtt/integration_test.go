//go:build integration

package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
)

// Integration tests for broker-backed behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	cfg := testConfig()
	cfg.ClientID = "graylogic-relay-integration"
	return cfg
}

func TestIntegration_ConnectClose(t *testing.T) {
	client, err := Connect("127.0.0.1", "relay", integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestIntegration_PublishSubscribeRoundtrip(t *testing.T) {
	cfg := integrationConfig()
	cfg.ClientID = "graylogic-relay-int-pub"

	pubClient, err := Connect("127.0.0.1", "relay", cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.ClientID = "graylogic-relay-int-sub"
	subClient, err := Connect("127.0.0.1", "relay", cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	topic := "relays-integration"
	received := make(chan []byte, 1)

	err = subClient.Subscribe(topic, 1, func(t string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// A relay command: channel 3 on.
	command := []byte{0x03, 0x01}
	if err := pubClient.Publish(topic, command, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case payload := <-received:
		if len(payload) != 2 || payload[0] != 0x03 || payload[1] != 0x01 {
			t.Errorf("received payload = %v, want %v", payload, command)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}
}

// TestIntegration_SerialOrdering verifies handlers see messages in the
// order they were published. Relay command sequences depend on this.
func TestIntegration_SerialOrdering(t *testing.T) {
	cfg := integrationConfig()
	cfg.ClientID = "graylogic-relay-int-order-pub"

	pubClient, err := Connect("127.0.0.1", "relay", cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.ClientID = "graylogic-relay-int-order-sub"
	subClient, err := Connect("127.0.0.1", "relay", cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	topic := "relays-integration-order"
	const messageCount = 20

	var mu sync.Mutex
	var got []byte

	err = subClient.Subscribe(topic, 1, func(t string, payload []byte) error {
		mu.Lock()
		got = append(got, payload[0])
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < messageCount; i++ {
		if err := pubClient.Publish(topic, []byte{byte(i)}, 1, false); err != nil {
			t.Fatalf("Publish(%d) error = %v", i, err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= messageCount {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timeout: received %d of %d messages", n, messageCount)
		case <-time.After(50 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < messageCount; i++ {
		if got[i] != byte(i) {
			t.Fatalf("message %d arrived out of order: got sequence %v", i, got)
		}
	}
}

func TestIntegration_SubscriptionTracking(t *testing.T) {
	client, err := Connect("127.0.0.1", "relay", integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := "relays-integration-track"
	err = client.Subscribe(topic, 1, func(string, []byte) error { return nil })
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if !client.HasSubscription(topic) {
		t.Error("HasSubscription() = false after Subscribe()")
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe()")
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}
