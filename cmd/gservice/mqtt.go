package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig says how to connect to a broker.
type MQTTConfig struct {
	// Broker is something like "tcp://localhost:1883".
	Broker   string `json:"broker" yaml:"broker"`
	ClientId string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	KeepAlive time.Duration `json:"keepAlive,omitempty" yaml:"keepAlive,omitempty"`
	Reconnect bool          `json:"reconnect,omitempty" yaml:"reconnect,omitempty"`

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint `json:"quiesce,omitempty" yaml:"quiesce,omitempty"`

	// InTopics are the topic(s), comma-separated, that carry
	// Ops.  A topic can end with ":QOS".
	InTopics string `json:"in" yaml:"in"`

	// OutTopic gets the reply for each Op.
	OutTopic string `json:"out" yaml:"out"`
}

// MQTTCoupling hooks a Service up to an MQTT broker.  Each message
// on an in-bound topic is an Op, and the Op's reply is published to
// the out-bound topic.
type MQTTCoupling struct {
	Client mqtt.Client
	Config *MQTTConfig

	s *Service
}

func NewMQTTCoupling(ctx context.Context, s *Service, cfg *MQTTConfig) *MQTTCoupling {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientId)
	if 0 < cfg.KeepAlive {
		opts.SetKeepAlive(cfg.KeepAlive)
	}
	opts.Username = cfg.Username
	opts.Password = cfg.Password
	opts.AutoReconnect = cfg.Reconnect

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	c := &MQTTCoupling{
		Config: cfg,
		s:      s,
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		c.inHandler(ctx, msg)
	}

	c.Client = mqtt.NewClient(opts)

	return c
}

// handle does the Op in the payload and returns the reply.
func (c *MQTTCoupling) handle(ctx context.Context, payload []byte) []byte {
	var op Op
	if err := json.Unmarshal(payload, &op); err != nil {
		log.Printf("Couldn't JSON-parse payload: %s", payload)
		js, _ := json.Marshal(map[string]string{
			"err": fmt.Sprintf("can't parse: %v", err),
		})
		return js
	}

	op.Do(ctx, c.s)

	js, err := json.Marshal(&op)
	if err != nil {
		js, _ = json.Marshal(map[string]string{
			"err": err.Error(),
		})
	}
	return js
}

// inHandler is a Paho publish handler, which is used to handle
// messages send to us from the MQTT broker due to our subscriptions.
func (c *MQTTCoupling) inHandler(ctx context.Context, msg mqtt.Message) {
	log.Printf("incoming: %s %s\n", msg.Topic(), msg.Payload())

	js := c.handle(ctx, msg.Payload())

	topic, qos := parseTopic(c.Config.OutTopic)
	token := c.Client.Publish(topic, qos, false, js)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("Publish error: %s", err)
	}
}

// Start creates the MQTT session.
func (c *MQTTCoupling) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker %s", c.Config.Broker)
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(c.Config.InTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return nil
}

// Stop terminates the MQTT session.
func (c *MQTTCoupling) Stop() {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Config.Quiesce)
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0
	}
	var qos byte
	if _, err := fmt.Sscanf(s[i+1:], "%d", &qos); err != nil || 2 < qos {
		return s, 0
	}
	return s[:i], qos
}
