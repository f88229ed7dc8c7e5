package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/config"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher mirrors feed snapshots somewhere outside the process.
type Publisher interface {
	Publish(view, sessionID string, buses []models.Bus) error
	Close()
}

// Snapshot is the payload published for every tick.
type Snapshot struct {
	View      string       `json:"view"`
	SessionID string       `json:"session_id"`
	Buses     []models.Bus `json:"buses"`
	SentAt    time.Time    `json:"sent_at"`
}

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes snapshots to an MQTT broker
type MQTTPublisher struct {
	client      client
	topicPrefix string
	qos         byte
	timeout     time.Duration
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	c := mqtt.NewClient(opts)

	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}

	log.WithFields(log.Fields{
		"broker":       cfg.BrokerURL,
		"topic_prefix": cfg.TopicPrefix,
	}).Info("Connected to MQTT broker")

	return newMQTTPublisher(c, cfg.TopicPrefix, byte(cfg.QoS)), nil
}

func newMQTTPublisher(c client, topicPrefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client:      c,
		topicPrefix: topicPrefix,
		qos:         qos,
		timeout:     publishTimeout,
	}
}

// Topic builds <prefix>/<view>/<session>.
func Topic(prefix, view, sessionID string) string {
	return prefix + "/" + view + "/" + sessionID
}

// Publish sends one snapshot and waits for the broker to accept it.
func (p *MQTTPublisher) Publish(view, sessionID string, buses []models.Bus) error {
	payload, err := json.Marshal(Snapshot{
		View:      view,
		SessionID: sessionID,
		Buses:     buses,
		SentAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	token := p.client.Publish(Topic(p.topicPrefix, view, sessionID), p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish error: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// Nop drops every snapshot. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, string, []models.Bus) error { return nil }
func (Nop) Close()                                     {}
