package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/gps"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes combined GPS fixes as retained JSON on TOPIC_GPS/<provider>.
func RunGPSProducer(ctx context.Context, logger *zap.SugaredLogger) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("gps: open %s: %w", serialOpts.PortName, err)
	}
	defer port.Close()
	logger.Infof("gps: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	// closing the port unblocks the reader on shutdown
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	topic := providerTopic(cfg.TopicGPS, cfg.GPSProviderName)
	err = streamFixes(port, gps.NewAssembler(cfg.GPSProviderName), client, topic, logger)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// streamFixes publishes every fix assembled from r until r fails.
func streamFixes(r io.Reader, asm *gps.Assembler, client mqtt.Client, topic string, logger *zap.SugaredLogger) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("gps: read: %w", err)
		}

		fix, ok, err := asm.Feed(line)
		if err != nil {
			// noisy GPS or partial sentences
			if !errors.Is(err, gps.ErrSkipped) {
				logger.Debugf("gps: NMEA parse error: %v (line: %q)", err, line)
			}
			continue
		}
		if !ok {
			continue
		}

		if err := publishJSON(client, topic, true, fix); err != nil {
			logger.Warnf("gps: %v", err)
			continue
		}
		logger.Debugf("gps: published fix %+v", fix)
	}
}
