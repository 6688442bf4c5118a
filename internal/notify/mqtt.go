package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/security"
	"github.com/terraincognita07/healthpulse/internal/services"
)

const (
	mqttPublishTimeout = 5 * time.Second
	mqttQoS            = 1
)

type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

type mqttPublisher interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type mqttMessage struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// MQTTNotifier publishes notifications to a broker topic. Permission is
// granted only while the client is connected.
type MQTTNotifier struct {
	client mqttPublisher
	topic  string
	now    func() time.Time
}

func DialMQTT(options MQTTOptions, logger zerolog.Logger) (*MQTTNotifier, error) {
	if strings.TrimSpace(options.Broker) == "" {
		return nil, errors.New("mqtt broker url is required")
	}
	clientID, err := mqttClientID(options.ClientID)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "notifier").Str("channel", ChannelMQTT).Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(options.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(options.Username)
	opts.SetPassword(options.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info().Str("broker", options.Broker).Msg("connected to mqtt broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt: %w", token.Error())
	}
	return newMQTTNotifier(client, options.Topic), nil
}

func newMQTTNotifier(client mqttPublisher, topic string) *MQTTNotifier {
	if strings.TrimSpace(topic) == "" {
		topic = "healthpulse/reminders"
	}
	return &MQTTNotifier{client: client, topic: topic, now: time.Now}
}

func (notifier *MQTTNotifier) RequestPermission(context.Context) (services.Permission, error) {
	if notifier.client.IsConnected() {
		return services.PermissionGranted, nil
	}
	return services.PermissionDefault, nil
}

func (notifier *MQTTNotifier) Notify(ctx context.Context, title string, body string) error {
	payload, err := json.Marshal(mqttMessage{Title: title, Body: body, SentAt: notifier.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode mqtt notification: %w", err)
	}

	token := notifier.client.Publish(notifier.topic, mqttQoS, false, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	case <-time.After(mqttPublishTimeout):
		return errors.New("mqtt publish timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish mqtt notification: %w", err)
	}
	return nil
}

func mqttClientID(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}
	return security.RandomClientID("healthpulse")
}
