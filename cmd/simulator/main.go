package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/config"
	"github.com/ukydev/schoolbus-tracker/internal/feed"
	"github.com/ukydev/schoolbus-tracker/internal/fleet"
	"github.com/ukydev/schoolbus-tracker/internal/logging"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/mirror"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	var publisher mirror.Publisher = mirror.Nop{}
	if cfg.MQTT.Enabled() {
		p, err := mirror.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			log.WithError(err).Warn("MQTT mirror unavailable, logging only")
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.NewString()
	log.WithFields(log.Fields{
		"session_id":    sessionID,
		"tick_interval": cfg.TickInterval,
		"mqtt":          cfg.MQTT.Enabled(),
	}).Info("Starting fleet simulator")

	if err := simulate(ctx, cfg.TickInterval, publisher, sessionID); err != nil {
		log.WithError(err).Fatal("Simulator failed")
	}
	log.Info("Fleet simulator stopped")
}

// simulate runs the admin fleet feed until ctx ends, logging and mirroring
// every tick.
func simulate(ctx context.Context, interval time.Duration, publisher mirror.Publisher, sessionID string) error {
	logger := log.WithFields(log.Fields{"view": mapview.ViewAdmin, "session_id": sessionID})

	f := feed.New(fleet.AdminBuses(time.Now()), feed.WithInterval(interval), feed.WithLogger(logger))
	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()

	if err := f.Start(ctx); err != nil {
		return err
	}
	defer f.Stop()

	forwarder := mirror.NewForwarder(publisher, mapview.ViewAdmin, sessionID, logger)
	defer forwarder.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case buses, ok := <-updates:
			if !ok {
				return nil
			}
			for _, bus := range buses {
				logger.WithFields(log.Fields{
					"bus_id": bus.ID,
					"lat":    bus.Location.Lat,
					"lng":    bus.Location.Lng,
					"status": bus.Status,
				}).Info("Bus position")
			}
			forwarder.Offer(buses)
		}
	}
}
