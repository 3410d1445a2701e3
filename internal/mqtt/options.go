package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	defaultKeepAlive = 60 * time.Second

	maxReconnectInterval = time.Minute

	maxQoS = 2

	// DefaultClientID is used when Config.ClientID is empty
	DefaultClientID = "econet-exporter"
)

// Config describes the broker connection
type Config struct {
	// Broker is a URL such as tcp://localhost:1883 or ssl://broker:8883.
	// A bare host[:port] is treated as tcp.
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// brokerURL adds the tcp scheme and default port when missing
func brokerURL(broker string) string {
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	rest := broker[strings.Index(broker, "://")+3:]
	if !strings.Contains(rest, ":") {
		broker += ":1883"
	}
	return broker
}

func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg.Broker))

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	return opts
}

// StatusMessage is published retained on the status topic
type StatusMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Availability values
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

func statusPayload(status, clientID, reason string) []byte {
	data, _ := json.Marshal(StatusMessage{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return data
}

// configureLWT makes the broker mark the controller offline if the exporter
// disconnects without a clean shutdown.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, qos byte) {
	payload := statusPayload(StatusOffline, opts.ClientID, "unexpected_disconnect")
	opts.SetBinaryWill(topics.Status(), payload, qos, true)
}
