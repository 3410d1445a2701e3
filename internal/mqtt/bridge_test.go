package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/server"
)

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{topic, payload, retained})
	return nil
}

func (f *fakePublisher) last(t *testing.T) published {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no messages published")
	}
	return f.messages[len(f.messages)-1]
}

type fakeSetter struct {
	name  string
	value any
	ok    bool
	err   error
	calls int
}

func (f *fakeSetter) SetParam(_ context.Context, name string, value any) (bool, error) {
	f.calls++
	f.name = name
	f.value = value
	return f.ok, f.err
}

func TestTopics(t *testing.T) {
	topics := Topics{UID: "UID1"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", topics.State(), "econet/UID1/state"},
		{"status", topics.Status(), "econet/UID1/status"},
		{"set", topics.Set("tempCOSet"), "econet/UID1/set/tempCOSet"},
		{"wildcard", topics.SetWildcard(), "econet/UID1/set/+"},
		{"result", topics.Result("tempCOSet"), "econet/UID1/set/tempCOSet/result"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestParamFromSetTopic(t *testing.T) {
	topics := Topics{UID: "UID1"}

	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{"econet/UID1/set/tempCOSet", "tempCOSet", true},
		{"econet/UID1/set/tempCOSet/result", "", false},
		{"econet/UID2/set/tempCOSet", "", false},
		{"econet/UID1/set/", "", false},
		{"econet/UID1/state", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := topics.ParamFromSetTopic(tt.topic)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParamFromSetTopic(%s) = %s, %v, want %s, %v", tt.topic, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost", "tcp://localhost:1883"},
		{"localhost:1884", "tcp://localhost:1884"},
		{"tcp://broker", "tcp://broker:1883"},
		{"ssl://broker:8883", "ssl://broker:8883"},
	}
	for _, tt := range tests {
		if got := brokerURL(tt.in); got != tt.want {
			t.Errorf("brokerURL(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusPayload(t *testing.T) {
	var msg StatusMessage
	if err := json.Unmarshal(statusPayload(StatusOffline, "econet-exporter", "unexpected_disconnect"), &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if msg.Status != StatusOffline {
		t.Errorf("Status = %s, want %s", msg.Status, StatusOffline)
	}
	if msg.Reason != "unexpected_disconnect" {
		t.Errorf("Reason = %s, want unexpected_disconnect", msg.Reason)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", msg.Timestamp, err)
	}
}

func TestConnectInvalidQoS(t *testing.T) {
	_, err := Connect(Config{Broker: "localhost", QoS: 3}, Topics{UID: "UID1"})
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Connect() error = %v, want ErrInvalidQoS", err)
	}
}

func TestBridgeOnSnapshot(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(context.Background(), pub, &fakeSetter{}, Topics{UID: "UID1"})

	b.OnSnapshot(server.Snapshot{
		Identity:  econet.Identity{UID: "UID1"},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Params:    econet.Params{"tempCO": 45.5},
	})

	msg := pub.last(t)
	if msg.topic != "econet/UID1/state" {
		t.Errorf("topic = %s, want econet/UID1/state", msg.topic)
	}
	if !msg.retained {
		t.Error("state should be retained")
	}

	var state StateMessage
	if err := json.Unmarshal(msg.payload, &state); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if state.Params["tempCO"] != 45.5 {
		t.Errorf("tempCO = %v, want 45.5", state.Params["tempCO"])
	}
	if state.Timestamp != "2026-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %s, want 2026-01-02T03:04:05Z", state.Timestamp)
	}
}

func TestBridgeHandleSet(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		setter      *fakeSetter
		wantValue   any
		wantSuccess bool
		wantError   string
		wantCalls   int
	}{
		{
			name:        "numeric value",
			payload:     "55",
			setter:      &fakeSetter{ok: true},
			wantValue:   55.0,
			wantSuccess: true,
			wantCalls:   1,
		},
		{
			name:        "text value",
			payload:     " auto ",
			setter:      &fakeSetter{ok: true},
			wantValue:   "auto",
			wantSuccess: true,
			wantCalls:   1,
		},
		{
			name:      "not confirmed",
			payload:   "55",
			setter:    &fakeSetter{ok: false},
			wantValue: 55.0,
			wantError: "controller did not confirm the write",
			wantCalls: 1,
		},
		{
			name:      "validation error",
			payload:   "99",
			setter:    &fakeSetter{err: econet.NewValidationError("tempCOSet must be within [27, 68], got 99")},
			wantValue: 99.0,
			wantError: "tempCOSet must be within [27, 68], got 99",
			wantCalls: 1,
		},
		{
			name:      "empty payload",
			payload:   "",
			setter:    &fakeSetter{ok: true},
			wantError: ErrInvalidPayload.Error(),
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			b := NewBridge(context.Background(), pub, tt.setter, Topics{UID: "UID1"})

			if err := b.HandleSet("econet/UID1/set/tempCOSet", []byte(tt.payload)); err != nil {
				t.Fatalf("HandleSet() error = %v", err)
			}

			if tt.setter.calls != tt.wantCalls {
				t.Errorf("SetParam calls = %d, want %d", tt.setter.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 {
				if tt.setter.name != "tempCOSet" {
					t.Errorf("name = %s, want tempCOSet", tt.setter.name)
				}
				if tt.setter.value != tt.wantValue {
					t.Errorf("value = %v (%T), want %v (%T)", tt.setter.value, tt.setter.value, tt.wantValue, tt.wantValue)
				}
			}

			msg := pub.last(t)
			if msg.topic != "econet/UID1/set/tempCOSet/result" {
				t.Errorf("topic = %s, want econet/UID1/set/tempCOSet/result", msg.topic)
			}
			if msg.retained {
				t.Error("result should not be retained")
			}

			var result ResultMessage
			if err := json.Unmarshal(msg.payload, &result); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", result.Error, tt.wantError)
			}
		})
	}
}

func TestBridgeHandleSetIgnoresForeignTopics(t *testing.T) {
	pub := &fakePublisher{}
	setter := &fakeSetter{ok: true}
	b := NewBridge(context.Background(), pub, setter, Topics{UID: "UID1"})

	if err := b.HandleSet("econet/UID1/set/tempCOSet/result", []byte(`{"success":true}`)); err != nil {
		t.Fatalf("HandleSet() error = %v", err)
	}
	if setter.calls != 0 {
		t.Errorf("SetParam calls = %d, want 0", setter.calls)
	}
	if len(pub.messages) != 0 {
		t.Errorf("published = %d, want 0", len(pub.messages))
	}
}

func TestBridgeOnFailure(t *testing.T) {
	pub := &fakePublisher{}
	setter := &fakeSetter{ok: true}
	b := NewBridge(context.Background(), pub, setter, Topics{UID: "UID1"})

	var sink server.Sink = b
	sink.OnFailure(errors.New("timeout"))
	if len(pub.messages) != 0 {
		t.Errorf("published on failure = %d, want 0", len(pub.messages))
	}
}
