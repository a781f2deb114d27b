// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// ScreenMessage is the payload of the screen orientation topic.
type ScreenMessage struct {
	Degrees int `json:"degrees"` // 0..359, or -1 when lying flat
}

// connectMQTT connects with auto reconnect. Handlers run on their own
// goroutines so a slow handler cannot stall acknowledgements.
func connectMQTT(broker, clientID string, logger *zap.SugaredLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warnf("mqtt: connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", broker, token.Error())
	}
	logger.Infof("mqtt: connected to %s as %s", broker, clientID)
	return client, nil
}

// publishJSON marshals v and publishes it, waiting for the broker.
func publishJSON(client mqtt.Client, topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt: marshal for %s: %w", topic, err)
	}
	if token := client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, token.Error())
	}
	return nil
}

func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: subscribe %s: %w", topic, token.Error())
	}
	return nil
}

func unsubscribe(client mqtt.Client, topic string) error {
	if token := client.Unsubscribe(topic); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: unsubscribe %s: %w", topic, token.Error())
	}
	return nil
}

// providerTopic is the retained topic a location provider publishes on.
func providerTopic(base, provider string) string {
	return base + "/" + provider
}
