package realtime

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// CommandPublisher mirrors every routed command onto an MQTT topic per
// store, so a player behind a flaky websocket still converges on the desired
// state. A nil-configured publisher is a no-op.
type CommandPublisher struct {
	client mqtt.Client
}

// NewCommandPublisher connects to the broker, or returns a disabled
// publisher when brokerURL is empty.
func NewCommandPublisher(brokerURL string) (*CommandPublisher, error) {
	if brokerURL == "" {
		return &CommandPublisher{}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("dockfm-server")
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &CommandPublisher{client: client}, nil
}

// Publish sends a command to the store's topic. Fire and forget: delivery
// confirmation comes from the player's next heartbeat, never from the
// transport.
func (p *CommandPublisher) Publish(storeID int, msg Message) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	topic := fmt.Sprintf("player/%d/commands", storeID)
	token := p.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish command to MQTT")
	}
}

// Close disconnects from the broker.
func (p *CommandPublisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
