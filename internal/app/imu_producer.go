package app

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/config"
	"github.com/relabs-tech/inertial_radar/internal/imu"
	"github.com/relabs-tech/inertial_radar/internal/orientation"
	"github.com/relabs-tech/inertial_radar/internal/rotation"
	"github.com/relabs-tech/inertial_radar/internal/sensors"
)

// RunIMUProducer reads the accelerometer and magnetometer and publishes
// samples on TOPIC_IMU and the raw screen angle on TOPIC_SCREEN.
func RunIMUProducer(ctx context.Context, logger *zap.SugaredLogger) error {
	cfg := config.Get()

	src, err := sensors.Open(sensors.Options{
		SPIDevice:  cfg.IMUSPIDevice,
		CSPin:      cfg.IMUCSPin,
		AccelRange: cfg.IMUAccelRange,
		MagBus:     cfg.MagI2CBus,
		MagAddr:    cfg.MagI2CAddr,
		MagCalibration: sensors.MagCalibration{
			Offset: cfg.MagOffset,
			Scale:  cfg.MagScale,
		},
	}, logger)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDIMU, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	logger.Info("imu: connected to MQTT, starting publish loop")
	p := &samplePublisher{
		client:      client,
		imuTopic:    cfg.TopicIMU,
		screenTopic: cfg.TopicScreen,
		logger:      logger,
		lastScreen:  -2,
	}
	return p.run(ctx, src, time.Duration(cfg.IMUSampleInterval)*time.Millisecond)
}

// samplePublisher is the tick loop shared by the hardware and mock producers.
type samplePublisher struct {
	client      mqtt.Client
	imuTopic    string
	screenTopic string
	logger      *zap.SugaredLogger

	lastScreen int
}

func (p *samplePublisher) run(ctx context.Context, src imu.Source, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		sample, err := src.Next()
		if err != nil {
			p.logger.Warnf("imu: read error: %v", err)
			continue
		}
		p.publish(sample)
	}
}

func (p *samplePublisher) publish(sample imu.Sample) {
	if err := publishJSON(p.client, p.imuTopic, true, sample); err != nil {
		p.logger.Warnf("imu: %v", err)
		return
	}
	if !sample.HasAccel {
		return
	}

	deg, ok := orientation.ScreenDegrees(sample.Accel())
	if !ok {
		deg = rotation.Unknown
	}
	if deg == p.lastScreen {
		return
	}
	if err := publishJSON(p.client, p.screenTopic, true, ScreenMessage{Degrees: deg}); err != nil {
		p.logger.Warnf("imu: %v", err)
		return
	}
	p.lastScreen = deg
	p.logger.Debugf("imu: screen angle %d", deg)
}
