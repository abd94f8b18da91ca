// Package notify publishes dispatch outcomes to an MQTT broker so external
// dashboards can follow the bot without polling its logs.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/events"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

// Config defines the connection parameters for the MQTT notifier. Disabled
// by default.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "lsb-" + uuid.NewString()[:8]
	}
	if c.Topic == "" {
		c.Topic = "leitstellenspiel/outcomes"
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes outcome events as JSON messages.
type Notifier struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// New connects to the broker. A disabled config returns (nil, nil).
func New(cfg Config) (*Notifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt notifier enabled without broker")
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	log := logger.New("mqtt-notifier")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warnf("mqtt connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Notifier{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// message is the wire format of one published outcome.
type message struct {
	MissionID    string   `json:"mission_id"`
	Title        string   `json:"title"`
	Outcome      string   `json:"outcome"`
	Source       string   `json:"source"`
	Committed    []string `json:"committed,omitempty"`
	OutOfService []string `json:"out_of_service,omitempty"`
	At           string   `json:"at"`
}

// PublishOutcome sends one outcome event. Publish failures are logged and
// swallowed so the dispatch loop never stalls on the broker.
func (n *Notifier) PublishOutcome(_ context.Context, ev events.OutcomeEvent) {
	if n == nil {
		return
	}
	payload, err := json.Marshal(message{
		MissionID:    ev.Mission.ID,
		Title:        ev.Mission.Title,
		Outcome:      ev.Outcome.Kind.String(),
		Source:       ev.Outcome.Source,
		Committed:    ev.Outcome.Committed,
		OutOfService: ev.Outcome.OutOfService,
		At:           ev.At.UTC().Format(time.RFC3339),
	})
	if err != nil {
		n.log.Errorf("marshal outcome: %v", err)
		return
	}
	if token := n.cli.Publish(n.topic, n.qos, false, payload); token.Wait() && token.Error() != nil {
		n.log.Errorf("publish outcome for mission %s: %v", ev.Mission.ID, token.Error())
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.cli.Disconnect(250)
}
