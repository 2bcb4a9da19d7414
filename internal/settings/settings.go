package settings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Built-in session defaults, used for any directive the settings file
// does not provide.
const (
	// DefaultTopic is the MQTT topic carrying relay commands.
	DefaultTopic = "relays"

	// DefaultBroker is the MQTT broker host.
	DefaultBroker = "192.168.0.1"

	// FileName is the settings file name, looked up next to the executable.
	FileName = "settings.dat"
)

// Recognised directive labels.
const (
	labelTopic  = "TOPIC"
	labelBroker = "BROKER"
)

// Session is the immutable session configuration for one daemon run.
// It is resolved once at startup and never re-read.
type Session struct {
	// Broker is the MQTT broker host (name or address, no port).
	Broker string

	// Topic is the MQTT topic to subscribe to for relay commands.
	Topic string
}

// Defaults returns a Session populated with the built-in defaults.
func Defaults() Session {
	return Session{
		Broker: DefaultBroker,
		Topic:  DefaultTopic,
	}
}

// Resolve parses settings directives from r over the built-in defaults.
//
// The parse is line oriented and tolerant: comment lines, blank lines,
// unknown labels and value-less directives are all skipped, leaving the
// corresponding defaults in place. Labels are folded to upper case before
// matching, and a directive's value is the second whitespace-delimited
// token on the line (anything after it is ignored).
//
// Resolve always returns a fully populated Session. Calling it twice on
// the same content yields the same result.
func Resolve(r io.Reader) Session {
	s := Defaults()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			// Blank line or a label with no value
			continue
		}

		switch strings.ToUpper(tokens[0]) {
		case labelTopic:
			s.Topic = tokens[1]
		case labelBroker:
			s.Broker = tokens[1]
		}
	}
	// A read error mid-stream simply ends resolution early; the session
	// stays valid with whatever was parsed before the failure.

	return s
}

// Load reads and resolves the settings file at path.
//
// A missing or unreadable file is not fatal: the returned Session falls
// back to Defaults() and the open error is returned alongside it so the
// caller can log the degradation. The Session is always usable.
func Load(path string) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return Defaults(), fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file, nothing to do on close failure

	return Resolve(f), nil
}

// DefaultPath returns the conventional settings file location: FileName
// in the same directory as the running executable. If the executable
// path cannot be determined, the invocation path is used instead.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}
