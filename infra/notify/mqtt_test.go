package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/events"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (fakeToken) Error() error                   { return nil }

type fakeClient struct {
	topics   []string
	payloads [][]byte
}

func (f *fakeClient) IsConnected() bool     { return true }
func (f *fakeClient) Connect() paho.Token   { return fakeToken{} }
func (f *fakeClient) Disconnect(uint)       {}
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return fakeToken{}
}

func TestNewDisabledReturnsNil(t *testing.T) {
	n, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("disabled notifier: %v", err)
	}
	if n != nil {
		t.Fatal("disabled config must yield a nil notifier")
	}
	// Publishing through a nil notifier is a no-op, not a panic.
	n.PublishOutcome(context.Background(), events.OutcomeEvent{})
	n.Close()
}

func TestPublishOutcome(t *testing.T) {
	cli := &fakeClient{}
	n := &Notifier{cli: cli, topic: "leitstellenspiel/outcomes", log: logger.NopLogger{}}

	n.PublishOutcome(context.Background(), events.OutcomeEvent{
		Mission: model.MissionRecord{ID: "m1", Title: "Wohnungsbrand"},
		Outcome: model.Outcome{Kind: model.OutcomeConfirmed, Source: "catalog", Committed: []string{"u1"}},
		At:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	if len(cli.payloads) != 1 || cli.topics[0] != "leitstellenspiel/outcomes" {
		t.Fatalf("publish calls: %v", cli.topics)
	}
	var msg map[string]any
	if err := json.Unmarshal(cli.payloads[0], &msg); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if msg["mission_id"] != "m1" || msg["outcome"] != "confirmed" {
		t.Fatalf("payload %v", msg)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Enabled: true, Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	if cfg.ClientID == "" || cfg.Topic == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
