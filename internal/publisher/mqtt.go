// Package publisher forwards fresh device snapshots to an MQTT broker.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/models"
	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultQoS          byte = 0
	defaultPublishWait       = 5 * time.Second
	disconnectQuiesceMs uint = 250
)

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes each device of a snapshot to <prefix>/<deviceID>.
type MQTTPublisher struct {
	client      Client
	prefix      string
	publishWait time.Duration
	logger      *log.Logger
}

// Settings describes the broker connection.
type Settings struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Connect dials the broker and returns a publisher bound to it.
func Connect(settings Settings, logger *log.Logger) (*MQTTPublisher, error) {
	if settings.Broker == "" {
		return nil, errors.New("mqtt broker not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(settings.Broker)
	opts.SetClientID(settings.ClientID)
	opts.SetUsername(settings.Username)
	opts.SetPassword(settings.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if logger != nil {
			logger.Warn("MQTT connection lost", "err", err)
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("error connecting to MQTT broker %s: %w", settings.Broker, token.Error())
	}

	return New(client, settings.TopicPrefix, logger), nil
}

// New wraps an already connected client.
func New(client Client, prefix string, logger *log.Logger) *MQTTPublisher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MQTTPublisher{
		client:      client,
		prefix:      prefix,
		publishWait: defaultPublishWait,
		logger:      logger,
	}
}

// Topic returns the topic a device is published to.
func (p *MQTTPublisher) Topic(deviceID string) string {
	if p.prefix == "" {
		return deviceID
	}
	return p.prefix + "/" + deviceID
}

// Publish sends every device as its own JSON message. All devices are tried;
// the returned error joins the individual failures.
func (p *MQTTPublisher) Publish(ctx context.Context, devices []models.Device) error {
	var errs []error
	for _, d := range devices {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		payload, err := json.Marshal(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("error encoding device %s: %w", d.ID(), err))
			continue
		}

		topic := p.Topic(d.ID())
		token := p.client.Publish(topic, defaultQoS, false, payload)
		if !token.WaitTimeout(p.publishWait) {
			errs = append(errs, fmt.Errorf("timed out publishing to %s", topic))
			continue
		}
		if err := token.Error(); err != nil {
			errs = append(errs, fmt.Errorf("error publishing to %s: %w", topic, err))
			continue
		}
		p.logger.Debug("Published device", "topic", topic)
	}
	return errors.Join(errs...)
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.logger.Info("Disconnecting from MQTT broker")
	p.client.Disconnect(disconnectQuiesceMs)
}

// Nop drops every snapshot. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, []models.Device) error { return nil }
