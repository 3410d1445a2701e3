package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every econet topic
const TopicPrefix = "econet"

// Topics builds the topic tree for one controller:
//
//	econet/<uid>/state               retained snapshot
//	econet/<uid>/status              online/offline (LWT)
//	econet/<uid>/set/<param>         write requests
//	econet/<uid>/set/<param>/result  write outcomes
type Topics struct {
	UID string
}

// State returns the retained snapshot topic.
//
// Example: econet/2L7SDPN6KQ38CIH2401K01U/state
func (t Topics) State() string {
	return fmt.Sprintf("%s/%s/state", TopicPrefix, t.UID)
}

// Status returns the availability topic
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, t.UID)
}

// Set returns the write request topic for param
func (t Topics) Set(param string) string {
	return fmt.Sprintf("%s/%s/set/%s", TopicPrefix, t.UID, param)
}

// SetWildcard matches write requests for every parameter
func (t Topics) SetWildcard() string {
	return t.Set("+")
}

// Result returns the write outcome topic for param
func (t Topics) Result(param string) string {
	return t.Set(param) + "/result"
}

// ParamFromSetTopic extracts the parameter name from a write request topic.
// Result topics and topics for other controllers are rejected.
func (t Topics) ParamFromSetTopic(topic string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/set/", TopicPrefix, t.UID)
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	param := strings.TrimPrefix(topic, prefix)
	if param == "" || strings.Contains(param, "/") {
		return "", false
	}
	return param, true
}
