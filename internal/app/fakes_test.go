// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

// fakeBroker is an in-process stand-in for the MQTT client. Messages are
// delivered synchronously to exact-topic subscribers and retained messages
// are replayed on subscribe.
type fakeBroker struct {
	mqtt.Client

	mu        sync.Mutex
	subs      map[string]mqtt.MessageHandler
	retained  map[string][]byte
	published []fakeMessage
	subErr    error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		subs:     map[string]mqtt.MessageHandler{},
		retained: map[string][]byte{},
	}
}

func (b *fakeBroker) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	case string:
		data = []byte(p)
	}
	msg := fakeMessage{topic: topic, payload: data, retained: retained}

	b.mu.Lock()
	b.published = append(b.published, msg)
	if retained {
		b.retained[topic] = data
	}
	handler := b.subs[topic]
	b.mu.Unlock()

	if handler != nil {
		handler(b, msg)
	}
	return &fakeToken{}
}

func (b *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	if b.subErr != nil {
		err := b.subErr
		b.mu.Unlock()
		return &fakeToken{err: err}
	}
	b.subs[topic] = handler
	data, ok := b.retained[topic]
	b.mu.Unlock()

	if ok && handler != nil {
		handler(b, fakeMessage{topic: topic, payload: data, retained: true})
	}
	return &fakeToken{}
}

func (b *fakeBroker) Unsubscribe(topics ...string) mqtt.Token {
	b.mu.Lock()
	for _, t := range topics {
		delete(b.subs, t)
	}
	b.mu.Unlock()
	return &fakeToken{}
}

func (b *fakeBroker) Disconnect(uint) {}

func (b *fakeBroker) subscribed(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[topic]
	return ok
}

func (b *fakeBroker) publishJSON(topic string, retained bool, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	b.Publish(topic, 0, retained, data)
}

func (b *fakeBroker) messages(topic string) []fakeMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []fakeMessage
	for _, m := range b.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return m.retained }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type sampleRecorder struct {
	mu      sync.Mutex
	samples []imu.Sample
}

func (r *sampleRecorder) OnSensorChanged(s imu.Sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

func (r *sampleRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

type locationRecorder struct {
	mu   sync.Mutex
	locs []geo.Location
}

func (r *locationRecorder) OnLocationChanged(l geo.Location) {
	r.mu.Lock()
	r.locs = append(r.locs, l)
	r.mu.Unlock()
}

func (r *locationRecorder) all() []geo.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]geo.Location(nil), r.locs...)
}

type screenRecorder struct {
	mu           sync.Mutex
	orientations []rotation.Quadrant
	rotations    []int
}

func (r *screenRecorder) OnScreenOrientationChanged(q rotation.Quadrant) {
	r.mu.Lock()
	r.orientations = append(r.orientations, q)
	r.mu.Unlock()
}

func (r *screenRecorder) OnScreenRotationChanged(d int) {
	r.mu.Lock()
	r.rotations = append(r.rotations, d)
	r.mu.Unlock()
}

type fakeGeocoder struct {
	loc geo.Location
	err error
}

func (g *fakeGeocoder) Geocode(context.Context, string) (geo.Location, error) {
	return g.loc, g.err
}
