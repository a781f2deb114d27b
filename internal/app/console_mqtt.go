package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/inertial_radar/internal/config"
)

// RunConsoleMQTT prints the radar state published on TOPIC_NAV_STATE, at
// most once per CONSOLE_LOG_INTERVAL.
func RunConsoleMQTT(ctx context.Context, out io.Writer, logger *zap.SugaredLogger) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	var (
		mu     sync.Mutex
		latest NavState
		fresh  bool
	)
	if err := subscribe(client, cfg.TopicNavState, func(_ mqtt.Client, msg mqtt.Message) {
		var s NavState
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			logger.Warnf("console: nav state unmarshal error: %v", err)
			return
		}
		mu.Lock()
		latest, fresh = s, true
		mu.Unlock()
	}); err != nil {
		return err
	}
	logger.Infof("console: subscribed to %s", cfg.TopicNavState)

	ticker := time.NewTicker(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("console: shutting down")
			return nil
		case <-ticker.C:
		}
		mu.Lock()
		s, ok := latest, fresh
		fresh = false
		mu.Unlock()
		if ok {
			fmt.Fprintln(out, formatNavState(s))
		}
	}
}

func formatNavState(s NavState) string {
	bearing, distance := "  ---.-", "---"
	if s.HasBearing {
		bearing = fmt.Sprintf("%7.1f", s.Bearing)
	}
	if s.HasDistance {
		distance = formatDistance(s.Distance)
	}
	return fmt.Sprintf("[NAV] HDG=%6.1f  DEC=%+5.1f  BRG=%s  REL=%6.1f  DIST=%s  SPD=%s  ROT=%3d",
		s.Azimuth, s.Declination, bearing, s.Relative, distance, s.SpeedText, s.DisplayRotation)
}
