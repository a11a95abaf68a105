package server

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/incontrol-io/incontrol/util"
)

// MQTT publishes vehicle state to an MQTT broker
type MQTT struct {
	log     *util.Logger
	client  mqtt.Client
	root    string
	qos     byte
	timeout time.Duration
}

// MQTTConfig is the broker configuration
type MQTTConfig struct {
	Broker   string
	User     string
	Password string
	Topic    string
}

// NewMQTT creates the MQTT publisher and connects to the broker
func NewMQTT(conf MQTTConfig) (*MQTT, error) {
	log := util.NewLogger("mqtt")

	root := conf.Topic
	if root == "" {
		root = "incontrol"
	}

	options := mqtt.NewClientOptions()
	options.AddBroker(conf.Broker)
	options.SetUsername(conf.User)
	options.SetPassword(conf.Password)
	options.SetClientID(fmt.Sprintf("incontrol-%s", uuid.NewString()[:8]))
	options.SetAutoReconnect(true)
	options.SetWill(root+"/status", "offline", 1, true)
	options.SetOnConnectHandler(func(c mqtt.Client) {
		log.DEBUG.Printf("connected to %s", conf.Broker)
		c.Publish(root+"/status", 1, true, "online")
	})

	m := &MQTT{
		log:     log,
		client:  mqtt.NewClient(options),
		root:    root,
		qos:     1,
		timeout: 5 * time.Second,
	}

	token := m.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt: timeout connecting to %s", conf.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt: %w", token.Error())
	}

	return m, nil
}

func (m *MQTT) publish(topic string, retained bool, payload interface{}) {
	token := m.client.Publish(topic, m.qos, retained, fmt.Sprintf("%v", payload))
	if token.WaitTimeout(m.timeout) && token.Error() != nil {
		m.log.ERROR.Printf("publish %s: %v", topic, token.Error())
	}
}

// Run publishes all updates received on the channel. Vehicle-scoped values
// are published below the redacted vin.
func (m *MQTT) Run(in <-chan util.Param) {
	for p := range in {
		topic := m.root
		if p.Vin != nil {
			topic = fmt.Sprintf("%s/%s", topic, util.Redact(*p.Vin))
		}
		topic = fmt.Sprintf("%s/%s", topic, p.Key)

		m.publish(topic, true, p.Val)
	}
}
