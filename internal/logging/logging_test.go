// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.log")
	logger, closeFn, err := New(Options{Level: "debug", File: path})
	test.That(t, err, test.ShouldBeNil)

	logger.Named("navigator").Debugw("location", "lat", 48.1)
	test.That(t, closeFn(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, `"logger":"navigator"`)
	test.That(t, string(data), test.ShouldContainSubstring, `"lat":48.1`)
}

func TestLevelFiltersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.log")
	logger, closeFn, err := New(Options{Level: "warn", File: path})
	test.That(t, err, test.ShouldBeNil)

	logger.Info("quiet")
	logger.Warn("loud")
	test.That(t, closeFn(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldNotContainSubstring, "quiet")
	test.That(t, string(data), test.ShouldContainSubstring, "loud")
}
