// Package settings resolves the relay bridge session configuration.
//
// The bridge reads a small line-oriented settings file (settings.dat)
// placed next to the executable. It tells the bridge which MQTT broker
// to join and which topic carries relay commands. Everything else is
// operator configuration (configs/config.yaml) and does not belong here.
//
// # File Format
//
// One directive per line. Blank lines and lines starting with '#' are
// ignored. Each directive is a label followed by a value, separated by
// whitespace:
//
//	# relay bridge session settings
//	TOPIC office/relays
//	BROKER 10.0.0.5
//
// Labels are matched case-insensitively. Unknown labels are ignored so
// the file can grow new directives without breaking older builds. A
// label without a value leaves the built-in default in place. When the
// same label appears twice, the last occurrence wins.
//
// # Degradation
//
// Resolution never fails the daemon. A missing or unreadable file, or a
// file containing no recognised directives, yields the built-in defaults
// (topic "relays", broker "192.168.0.1"). Load surfaces the open error
// purely so the caller can log that defaults are in use.
//
// # Usage
//
//	session, err := settings.Load(settings.DefaultPath())
//	if err != nil {
//	    log.Info("settings file unavailable, using defaults", "error", err)
//	}
//	log.Info("session resolved", "broker", session.Broker, "topic", session.Topic)
package settings
