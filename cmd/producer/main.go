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
	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/logging"
)

func main() {
	configPath := flag.String("config", "./radar_config.txt", "path to configuration file")
	lat := flag.Float64("lat", 48.2082, "latitude of the simulated walk's centre")
	lon := flag.Float64("lon", 16.3738, "longitude of the simulated walk's centre")
	alt := flag.Float64("alt", 170, "altitude in metres")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, closeLog := logging.Must(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closeLog()
	logger.Info("starting inertial-radar MQTT producer (mock)")

	center := geo.Location{Latitude: *lat, Longitude: *lon, Altitude: *alt, HasAlt: true}
	if !center.Valid() {
		logger.Fatalf("invalid centre %.6f,%.6f", *lat, *lon)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockProducer(ctx, center, logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
