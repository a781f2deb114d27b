// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.viam.com/test"
	"googlemaps.github.io/maps"
)

func newGeocodeServer(t *testing.T, body string) (*httptest.Server, *string) {
	t.Helper()
	var address string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/geocode/json" {
			http.NotFound(w, r)
			return
		}
		address = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &address
}

func TestGoogleGeocoder(t *testing.T) {
	srv, address := newGeocodeServer(t, `{
		"status": "OK",
		"results": [{
			"formatted_address": "Stephansplatz, 1010 Wien, Austria",
			"geometry": {"location": {"lat": 48.2085, "lng": 16.3721}}
		}]
	}`)

	g, err := NewGoogleGeocoder("test-key", maps.WithBaseURL(srv.URL))
	test.That(t, err, test.ShouldBeNil)

	loc, err := g.Geocode(context.Background(), "Stephansplatz, Wien")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *address, test.ShouldEqual, "Stephansplatz, Wien")
	test.That(t, loc.Provider, test.ShouldEqual, "geocode")
	test.That(t, loc.Latitude, test.ShouldAlmostEqual, 48.2085)
	test.That(t, loc.Longitude, test.ShouldAlmostEqual, 16.3721)
}

func TestGoogleGeocoderNoResults(t *testing.T) {
	srv, _ := newGeocodeServer(t, `{"status": "ZERO_RESULTS", "results": []}`)
	g, err := NewGoogleGeocoder("test-key", maps.WithBaseURL(srv.URL))
	test.That(t, err, test.ShouldBeNil)

	_, err = g.Geocode(context.Background(), "nowhere at all")
	test.That(t, errors.Is(err, ErrAddressNotFound), test.ShouldBeTrue)
}

func TestGoogleGeocoderDenied(t *testing.T) {
	srv, _ := newGeocodeServer(t, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`)
	g, err := NewGoogleGeocoder("test-key", maps.WithBaseURL(srv.URL))
	test.That(t, err, test.ShouldBeNil)

	_, err = g.Geocode(context.Background(), "Wien")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrAddressNotFound), test.ShouldBeFalse)
	test.That(t, err.Error(), test.ShouldContainSubstring, "REQUEST_DENIED")
}

func TestNewGoogleGeocoderRequiresKey(t *testing.T) {
	_, err := NewGoogleGeocoder("")
	test.That(t, err, test.ShouldNotBeNil)
}
