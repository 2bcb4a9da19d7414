// Package mqtt provides MQTT client connectivity for the relay bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions restored across reconnects
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The relay bridge is a pure MQTT consumer: it subscribes to a single
// command topic and drives GPIO outputs from the payloads it receives.
// The broker address comes from settings.dat at runtime; everything else
// (port, credentials, TLS, QoS) comes from config.yaml.
//
//	Controllers → MQTT Broker → Relay Bridge → GPIO
//
// # Message Ordering
//
// Handlers run serially on the client's router goroutine, in arrival
// order. A relay command sequence like on/off/on must land on the pins
// in that order, so handlers must stay fast and must not block.
//
// # Usage
//
//	client, err := mqtt.Connect(session.Broker, cfg.Bridge.ID, cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(session.Topic, 1,
//	    func(topic string, payload []byte) error {
//	        return applyCommand(payload)
//	    })
package mqtt
