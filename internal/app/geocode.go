// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// ErrAddressNotFound is returned when geocoding yields no result.
var ErrAddressNotFound = errors.New("geocode: address not found")

// Geocoder resolves a free form address into a destination.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Location, error)
}

// GoogleGeocoder uses the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a geocoder. Extra options are passed to the maps
// client.
func NewGoogleGeocoder(apiKey string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("geocode: GOOGLE_MAPS_API_KEY is not set")
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("geocode: failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Geocode returns the first match for address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (geo.Location, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return geo.Location{}, fmt.Errorf("geocode: %q: %w", address, err)
	}
	if len(results) == 0 {
		return geo.Location{}, ErrAddressNotFound
	}
	loc := results[0].Geometry.Location
	return geo.Location{Provider: "geocode", Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
