package mqtt

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/logging"
	"github.com/muurk/econet/internal/server"
)

// setTimeout bounds a write requested over MQTT
const setTimeout = 30 * time.Second

// Publisher sends a message to the broker
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Setter writes a validated parameter to the controller
type Setter interface {
	SetParam(ctx context.Context, name string, value any) (bool, error)
}

// StateMessage is the retained snapshot document
type StateMessage struct {
	UID       string        `json:"uid"`
	Timestamp string        `json:"timestamp"`
	Params    econet.Params `json:"params"`
}

// ResultMessage reports the outcome of a write request
type ResultMessage struct {
	Param     string `json:"param"`
	Value     string `json:"value"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Bridge mirrors poll snapshots to MQTT and turns set messages into
// controller writes. It implements server.Sink.
type Bridge struct {
	pub    Publisher
	setter Setter
	topics Topics
	ctx    context.Context
}

// NewBridge creates a bridge. ctx bounds writes triggered by set messages.
func NewBridge(ctx context.Context, pub Publisher, setter Setter, topics Topics) *Bridge {
	return &Bridge{
		pub:    pub,
		setter: setter,
		topics: topics,
		ctx:    ctx,
	}
}

// Start subscribes to the controller's set topics
func Start(ctx context.Context, client *Client, setter Setter) (*Bridge, error) {
	b := NewBridge(ctx, client, setter, client.Topics())
	if err := client.Subscribe(b.topics.SetWildcard(), b.HandleSet); err != nil {
		return nil, err
	}
	logging.Info("MQTT bridge listening for writes", zap.String("topic", b.topics.SetWildcard()))
	return b, nil
}

// OnSnapshot publishes snap retained on the state topic
func (b *Bridge) OnSnapshot(snap server.Snapshot) {
	data, err := json.Marshal(StateMessage{
		UID:       snap.Identity.UID,
		Timestamp: snap.Timestamp.Format(time.RFC3339),
		Params:    snap.Params,
	})
	if err != nil {
		logging.Error("Failed to encode MQTT state", zap.Error(err))
		return
	}
	if err := b.pub.Publish(b.topics.State(), data, true); err != nil {
		logging.Warn("Failed to publish MQTT state", zap.Error(err))
	}
}

// OnFailure keeps the retained state; availability is tracked by the LWT
func (b *Bridge) OnFailure(error) {}

// HandleSet processes a message on econet/<uid>/set/<param>
func (b *Bridge) HandleSet(topic string, payload []byte) error {
	param, ok := b.topics.ParamFromSetTopic(topic)
	if !ok {
		return nil
	}

	raw := strings.TrimSpace(string(payload))
	result := ResultMessage{Param: param, Value: raw}

	if raw == "" {
		result.Error = ErrInvalidPayload.Error()
		return b.publishResult(result)
	}

	ctx, cancel := context.WithTimeout(b.ctx, setTimeout)
	defer cancel()

	success, err := b.setter.SetParam(ctx, param, parseValue(raw))
	switch {
	case err != nil:
		result.Error = econet.GetShortErrorMessage(err)
	case !success:
		result.Error = "controller did not confirm the write"
	default:
		result.Success = true
	}

	logging.Info("MQTT write request",
		zap.String("param", param),
		zap.String("value", raw),
		zap.Bool("success", result.Success),
	)
	return b.publishResult(result)
}

func (b *Bridge) publishResult(result ResultMessage) error {
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return b.pub.Publish(b.topics.Result(result.Param), data, false)
}

// parseValue turns numeric payloads into float64 and leaves the rest as text
func parseValue(raw string) any {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}
