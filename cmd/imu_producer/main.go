// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/inertial_radar/internal/app"
	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/logging"
)

func main() {
	configPath := flag.String("config", "./radar_config.txt", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, closeLog := logging.Must(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closeLog()
	logger.Info("starting inertial-radar IMU producer (MPU9250 + QMC5883L → MQTT)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunIMUProducer(ctx, logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
