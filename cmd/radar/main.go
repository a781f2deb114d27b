// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command radar runs the bearing/distance controller and manages its
// destination and magnetometer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/app"
	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/geo"
	"github.com/relabs-tech/inertial_radar/internal/logging"
	"github.com/relabs-tech/inertial_radar/internal/store"
)

const (
	flagConfig   = "config"
	flagDuration = "duration"
)

var (
	logger   *zap.SugaredLogger
	closeLog func() error
)

func main() {
	a := &cli.App{
		Name:  "radar",
		Usage: "compass radar pointing at a saved destination",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "./radar_config.txt",
				Usage:   "path to configuration file",
			},
		},
		Before: setup,
		After: func(*cli.Context) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the radar controller (default)",
				Action: runAction,
			},
			{
				Name:  "destination",
				Usage: "manage the saved destination; a running radar picks changes up on restart, use the web API while it runs",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "print the saved destination",
						Action: destinationShowAction,
					},
					{
						Name:      "set",
						Usage:     "save a destination",
						ArgsUsage: "<latitude> <longitude>",
						Action:    destinationSetAction,
					},
					{
						Name:   "clear",
						Usage:  "forget the saved destination",
						Action: destinationClearAction,
					},
					{
						Name:      "geocode",
						Usage:     "look up an address and save it as the destination",
						ArgsUsage: "<address>",
						Action:    destinationGeocodeAction,
					},
				},
			},
			{
				Name:  "sensors",
				Usage: "magnetometer tools",
				Subcommands: []*cli.Command{
					{
						Name:   "registers",
						Usage:  "dump the QMC5883L registers",
						Action: sensorsRegistersAction,
					},
					{
						Name:  "calibrate",
						Usage: "estimate hard and soft iron correction while the device is rotated",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  flagDuration,
								Value: 60 * time.Second,
								Usage: "how long to sample",
							},
						},
						Action: sensorsCalibrateAction,
					},
				},
			},
		},
	}

	if err := a.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "radar: %v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	if err := config.InitGlobal(c.String(flagConfig)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	var err error
	logger, closeLog, err = logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	return err
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func runAction(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	logger.Info("starting inertial-radar (MQTT → radar views)")
	return app.RunRadar(ctx, logger)
}

func withStore(fn func(st store.Store) error) (err error) {
	st, err := app.OpenStore(config.Get())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()
	return fn(st)
}

func printDestination(c *cli.Context, p geo.E6) {
	loc := p.Location("user")
	fmt.Fprintf(c.App.Writer, "%.6f,%.6f (lat_e6=%d lon_e6=%d)\n", loc.Latitude, loc.Longitude, p.LatitudeE6, p.LongitudeE6)
}

func destinationShowAction(c *cli.Context) error {
	return withStore(func(st store.Store) error {
		p, ok, err := st.Load(c.Context)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.App.Writer, "no destination")
			return nil
		}
		printDestination(c, p)
		return nil
	})
}

func destinationSetAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("destination set: expected <latitude> <longitude>")
	}
	lat, err := strconv.ParseFloat(c.Args().Get(0), 64)
	if err != nil {
		return fmt.Errorf("destination set: latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(c.Args().Get(1), 64)
	if err != nil {
		return fmt.Errorf("destination set: longitude: %w", err)
	}
	return saveDestination(c, geo.Location{Provider: "user", Latitude: lat, Longitude: lon})
}

func saveDestination(c *cli.Context, loc geo.Location) error {
	if !loc.Valid() {
		return fmt.Errorf("destination: invalid coordinates %.6f,%.6f", loc.Latitude, loc.Longitude)
	}
	return withStore(func(st store.Store) error {
		p := loc.ToE6()
		if err := st.Save(c.Context, p); err != nil {
			return err
		}
		printDestination(c, p)
		return nil
	})
}

func destinationClearAction(c *cli.Context) error {
	return withStore(func(st store.Store) error {
		return st.Clear(c.Context)
	})
}

func destinationGeocodeAction(c *cli.Context) error {
	address := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if address == "" {
		return errors.New("destination geocode: expected <address>")
	}
	geocoder, err := app.NewGeocoderFromConfig(config.Get())
	if err != nil {
		return err
	}
	if geocoder == nil {
		return errors.New("destination geocode: GOOGLE_MAPS_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
	defer cancel()
	loc, err := geocoder.Geocode(ctx, address)
	if err != nil {
		return err
	}
	logger.Infof("geocode: %q → %.6f,%.6f", address, loc.Latitude, loc.Longitude)
	return saveDestination(c, loc)
}

func sensorsRegistersAction(c *cli.Context) error {
	return app.RunRegisterDump(c.App.Writer, logger)
}

func sensorsCalibrateAction(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()
	return app.RunMagCalibration(ctx, c.Duration(flagDuration), c.App.Writer, logger)
}
