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

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, closeLog := logging.Must(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closeLog()
	logger.Info("starting inertial-radar GPS producer (NMEA → MQTT)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunGPSProducer(ctx, logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
