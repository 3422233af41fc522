package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttPublishTimeout = 2 * time.Second

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes each record as JSON to <topic>/<kind>.
type MQTTSink struct {
	client publisher
	topic  string
	qos    byte
}

// NewMQTTSink publishes through an already connected client.
func NewMQTTSink(client publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{client: client, topic: strings.TrimSuffix(topic, "/"), qos: qos}
}

// DialMQTT connects to broker ("host:port" or a full URL) and returns a sink
// publishing under topic. The client reconnects on its own after a drop.
func DialMQTT(broker, clientID, topic string, logger *slog.Logger) (*MQTTSink, error) {
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		if logger != nil {
			logger.Info("mqtt connected", "broker", broker, "client_id", clientID)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		if logger != nil {
			logger.Warn("mqtt connection lost", "broker", broker, "error", err)
		}
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return NewMQTTSink(client, topic, 1), nil
}

func (s *MQTTSink) Emit(r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	topic := s.topic + "/" + r.Kind
	token := s.client.Publish(topic, s.qos, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errors.New("mqtt publish " + topic + ": timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
