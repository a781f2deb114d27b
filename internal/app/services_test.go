// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/inertial_radar/internal/gps"
	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
)

const (
	testIMUTopic    = "radar/imu"
	testGPSTopic    = "radar/gps"
	testScreenTopic = "radar/screen"
)

func testFix(provider string, lat, lon float64, at time.Time) gps.Fix {
	return gps.Fix{
		Provider:   provider,
		Time:       at,
		Latitude:   lat,
		Longitude:  lon,
		SpeedKnots: 10,
		Validity:   "A",
	}
}

func TestMQTTSensorsFanOut(t *testing.T) {
	broker := newFakeBroker()
	s := NewMQTTSensors(broker, testIMUTopic, zaptest.NewLogger(t).Sugar())

	a, b := &sampleRecorder{}, &sampleRecorder{}
	test.That(t, s.RegisterListener(a), test.ShouldBeNil)
	test.That(t, s.RegisterListener(b), test.ShouldBeNil)
	test.That(t, s.RegisterListener(a), test.ShouldBeNil)
	test.That(t, broker.subscribed(testIMUTopic), test.ShouldBeTrue)

	broker.publishJSON(testIMUTopic, false, imu.Sample{Source: "mock", Ax: 1, HasAccel: true})
	test.That(t, a.count(), test.ShouldEqual, 1)
	test.That(t, b.count(), test.ShouldEqual, 1)
	test.That(t, a.samples[0].Source, test.ShouldEqual, "mock")

	broker.Publish(testIMUTopic, 0, false, []byte("not json"))
	test.That(t, a.count(), test.ShouldEqual, 1)

	test.That(t, s.UnregisterListener(a), test.ShouldBeNil)
	test.That(t, broker.subscribed(testIMUTopic), test.ShouldBeTrue)
	broker.publishJSON(testIMUTopic, false, imu.Sample{Source: "mock"})
	test.That(t, a.count(), test.ShouldEqual, 1)
	test.That(t, b.count(), test.ShouldEqual, 2)

	test.That(t, s.UnregisterListener(b), test.ShouldBeNil)
	test.That(t, broker.subscribed(testIMUTopic), test.ShouldBeFalse)

	// unknown listener is a no-op
	test.That(t, s.UnregisterListener(b), test.ShouldBeNil)
}

func TestMQTTSensorsSubscribeError(t *testing.T) {
	broker := newFakeBroker()
	broker.subErr = errors.New("not connected")
	s := NewMQTTSensors(broker, testIMUTopic, zaptest.NewLogger(t).Sugar())

	l := &sampleRecorder{}
	err := s.RegisterListener(l)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not connected")

	// the failed listener is not kept, so a retry subscribes again
	broker.subErr = nil
	test.That(t, s.RegisterListener(l), test.ShouldBeNil)
	test.That(t, broker.subscribed(testIMUTopic), test.ShouldBeTrue)
}

func TestMQTTLocationsLastKnownRetained(t *testing.T) {
	broker := newFakeBroker()
	at := time.Date(2024, 3, 23, 12, 35, 19, 0, time.UTC)
	broker.publishJSON(providerTopic(testGPSTopic, "gps"), true, testFix("gps", 48.1173, 11.5167, at))

	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps", "network"}, clock.NewMock(), zaptest.NewLogger(t).Sugar())
	loc, ok := s.LastKnownLocation("gps")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, loc.Provider, test.ShouldEqual, "gps")
	test.That(t, loc.Latitude, test.ShouldAlmostEqual, 48.1173)
	test.That(t, loc.HasSpeed, test.ShouldBeTrue)
	test.That(t, broker.subscribed(providerTopic(testGPSTopic, "gps")), test.ShouldBeFalse)

	// cached now
	test.That(t, s.BestProvider(), test.ShouldEqual, "gps")
	loc, ok = s.LastKnownLocation("gps")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, loc.Time.Equal(at), test.ShouldBeTrue)
}

func TestMQTTLocationsLastKnownTimeout(t *testing.T) {
	broker := newFakeBroker()
	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps"}, clock.New(), zaptest.NewLogger(t).Sugar())
	s.RetainedWait = 10 * time.Millisecond

	_, ok := s.LastKnownLocation("gps")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, broker.subscribed(providerTopic(testGPSTopic, "gps")), test.ShouldBeFalse)

	_, ok = s.LastKnownLocation("")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMQTTLocationsRetainedVoidFix(t *testing.T) {
	broker := newFakeBroker()
	void := testFix("gps", 48.1, 11.5, time.Now())
	void.Validity = "V"
	broker.publishJSON(providerTopic(testGPSTopic, "gps"), true, void)

	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps"}, clock.New(), zaptest.NewLogger(t).Sugar())
	s.RetainedWait = 10 * time.Millisecond
	_, ok := s.LastKnownLocation("gps")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMQTTLocationsThrottle(t *testing.T) {
	broker := newFakeBroker()
	clk := clock.NewMock()
	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps", "network"}, clk, zaptest.NewLogger(t).Sugar())
	topic := providerTopic(testGPSTopic, "gps")

	l := &locationRecorder{}
	test.That(t, s.RequestLocationUpdates("gps", 15*time.Second, 0, l), test.ShouldBeNil)
	test.That(t, broker.subscribed(topic), test.ShouldBeTrue)

	broker.publishJSON(topic, true, testFix("gps", 48.1, 11.5, clk.Now()))
	test.That(t, len(l.all()), test.ShouldEqual, 1)

	clk.Add(5 * time.Second)
	broker.publishJSON(topic, true, testFix("gps", 48.2, 11.5, clk.Now()))
	test.That(t, len(l.all()), test.ShouldEqual, 1)

	clk.Add(10 * time.Second)
	// the provider name comes from the topic, not the payload
	broker.publishJSON(topic, true, testFix("something-else", 48.3, 11.5, clk.Now()))
	locs := l.all()
	test.That(t, len(locs), test.ShouldEqual, 2)
	test.That(t, locs[1].Provider, test.ShouldEqual, "gps")
	test.That(t, locs[1].Latitude, test.ShouldAlmostEqual, 48.3)

	clk.Add(time.Minute)
	void := testFix("gps", 48.4, 11.5, clk.Now())
	void.Validity = "V"
	broker.publishJSON(topic, true, void)
	test.That(t, len(l.all()), test.ShouldEqual, 2)

	test.That(t, s.RemoveUpdates(l), test.ShouldBeNil)
	test.That(t, broker.subscribed(topic), test.ShouldBeFalse)
}

func TestMQTTLocationsMinDistance(t *testing.T) {
	broker := newFakeBroker()
	clk := clock.NewMock()
	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps"}, clk, zaptest.NewLogger(t).Sugar())
	topic := providerTopic(testGPSTopic, "gps")

	l := &locationRecorder{}
	test.That(t, s.RequestLocationUpdates("gps", 0, 100, l), test.ShouldBeNil)

	broker.publishJSON(topic, false, testFix("gps", 48.1, 11.5, clk.Now()))
	// roughly 11 m north
	broker.publishJSON(topic, false, testFix("gps", 48.1001, 11.5, clk.Now()))
	test.That(t, len(l.all()), test.ShouldEqual, 1)
	// roughly 1.1 km north
	broker.publishJSON(topic, false, testFix("gps", 48.11, 11.5, clk.Now()))
	test.That(t, len(l.all()), test.ShouldEqual, 2)
}

func TestMQTTLocationsBestProvider(t *testing.T) {
	broker := newFakeBroker()
	clk := clock.NewMock()
	s := NewMQTTLocations(broker, testGPSTopic, []string{"gps", "network"}, clk, zaptest.NewLogger(t).Sugar())
	test.That(t, s.BestProvider(), test.ShouldEqual, "gps")

	l := &locationRecorder{}
	test.That(t, s.RequestLocationUpdates("gps", 0, 0, l), test.ShouldBeNil)
	test.That(t, s.RequestLocationUpdates("network", 0, 0, l), test.ShouldBeNil)

	t0 := time.Date(2024, 3, 23, 12, 0, 0, 0, time.UTC)
	broker.publishJSON(providerTopic(testGPSTopic, "gps"), true, testFix("gps", 48.1, 11.5, t0))
	broker.publishJSON(providerTopic(testGPSTopic, "network"), true, testFix("network", 48.1, 11.5, t0.Add(time.Minute)))
	test.That(t, s.BestProvider(), test.ShouldEqual, "network")

	broker.publishJSON(providerTopic(testGPSTopic, "gps"), true, testFix("gps", 48.1, 11.5, t0.Add(2*time.Minute)))
	test.That(t, s.BestProvider(), test.ShouldEqual, "gps")

	test.That(t, s.RemoveUpdates(l), test.ShouldBeNil)
	test.That(t, broker.subscribed(providerTopic(testGPSTopic, "gps")), test.ShouldBeFalse)
	test.That(t, broker.subscribed(providerTopic(testGPSTopic, "network")), test.ShouldBeFalse)
}

func TestMQTTOrientation(t *testing.T) {
	broker := newFakeBroker()
	o := NewMQTTOrientation(broker, testScreenTopic, zaptest.NewLogger(t).Sugar())
	l := &screenRecorder{}

	test.That(t, o.Enable(l), test.ShouldBeNil)
	test.That(t, broker.subscribed(testScreenTopic), test.ShouldBeTrue)

	broker.publishJSON(testScreenTopic, true, ScreenMessage{Degrees: 88})
	test.That(t, l.rotations, test.ShouldResemble, []int{90})
	test.That(t, l.orientations, test.ShouldResemble, []rotation.Quadrant{rotation.Rotation270})

	// flat and repeated readings do not notify
	broker.publishJSON(testScreenTopic, true, ScreenMessage{Degrees: rotation.Unknown})
	broker.publishJSON(testScreenTopic, true, ScreenMessage{Degrees: 95})
	test.That(t, len(l.rotations), test.ShouldEqual, 1)

	test.That(t, o.Disable(), test.ShouldBeNil)
	test.That(t, broker.subscribed(testScreenTopic), test.ShouldBeFalse)
	broker.publishJSON(testScreenTopic, true, ScreenMessage{Degrees: 180})
	test.That(t, len(l.rotations), test.ShouldEqual, 1)

	// a fresh tracker replays the retained angle
	test.That(t, o.Enable(l), test.ShouldBeNil)
	test.That(t, l.rotations, test.ShouldResemble, []int{90, 180})
	test.That(t, o.Disable(), test.ShouldBeNil)
	test.That(t, o.Disable(), test.ShouldBeNil)
}
