package mqtt

import "fmt"

// TopicPrefix is the base for all bridge-published topics.
//
// The command topic the bridge listens on is NOT built here: it comes
// verbatim from settings.dat and may be any string the installer chose.
// Only topics the bridge itself publishes use this prefix.
const TopicPrefix = "graylogic"

// Topics provides builders for the topics the bridge publishes to.
// Using these helpers keeps topic naming consistent between the LWT
// registered at connect time and the health reporter's publications.
type Topics struct{}

// Health returns the health status topic for a bridge.
//
// Example: graylogic/health/relay
func (Topics) Health(bridgeID string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, bridgeID)
}
