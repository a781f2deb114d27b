// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// FileStore keeps the preferences in <dir>/<name>.yaml as a flat map of
// integers, e.g.
//
//	latitude: 48137154
//	longitude: 11576124
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by <dir>/<name>.yaml. The file is
// created on first save.
func NewFileStore(dir, name string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{path: filepath.Join(dir, name+".yaml")}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) read() (map[string]int32, error) {
	prefs := map[string]int32{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(b, &prefs); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	if prefs == nil {
		prefs = map[string]int32{}
	}
	return prefs, nil
}

func (s *FileStore) write(prefs map[string]int32) error {
	b, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: create dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context) (geo.E6, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return geo.E6{}, false, err
	}
	lat, ok := prefs[KeyLatitude]
	if !ok {
		return geo.E6{}, false, nil
	}
	return geo.E6{LatitudeE6: lat, LongitudeE6: prefs[KeyLongitude]}, true, nil
}

// Save implements Store. Other keys in the file are preserved.
func (s *FileStore) Save(_ context.Context, p geo.E6) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	prefs[KeyLatitude] = p.LatitudeE6
	prefs[KeyLongitude] = p.LongitudeE6
	return s.write(prefs)
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := prefs[KeyLatitude]; !ok {
		return nil
	}
	delete(prefs, KeyLatitude)
	delete(prefs, KeyLongitude)
	return s.write(prefs)
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
