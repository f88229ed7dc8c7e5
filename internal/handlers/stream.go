package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/feed"
	"github.com/ukydev/schoolbus-tracker/internal/fleet"
	"github.com/ukydev/schoolbus-tracker/internal/mapview"
	"github.com/ukydev/schoolbus-tracker/internal/mirror"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

const writeWait = 10 * time.Second

// StreamHandler pushes live updates to mounted dashboards. Every connection
// is one mounted dashboard with a feed of its own; the feed starts when the
// socket opens and stops when it closes.
type StreamHandler struct {
	upgrader websocket.Upgrader
	builder  *mapview.Builder
	interval time.Duration
	mirror   mirror.Publisher
	now      func() time.Time
}

// NewStreamHandler creates a stream handler ticking at interval. A nil
// publisher disables mirroring.
func NewStreamHandler(builder *mapview.Builder, interval time.Duration, publisher mirror.Publisher) *StreamHandler {
	if publisher == nil {
		publisher = mirror.Nop{}
	}
	return &StreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		builder:  builder,
		interval: interval,
		mirror:   publisher,
		now:      time.Now,
	}
}

// Parent streams the single parent bus
func (h *StreamHandler) Parent(w http.ResponseWriter, r *http.Request) {
	seed := []models.Bus{fleet.ParentBus(h.now())}
	h.serve(w, r, mapview.ViewParent, seed, func(buses []models.Bus) mapview.Update {
		return h.builder.Parent(buses[0])
	})
}

// Admin streams the whole fleet
func (h *StreamHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, mapview.ViewAdmin, fleet.AdminBuses(h.now()), h.builder.Admin)
}

func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, view string, seed []models.Bus, build func([]models.Bus) mapview.Update) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("view", view).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := log.WithFields(log.Fields{"view": view, "session_id": sessionID})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	f := feed.New(seed, feed.WithInterval(h.interval), feed.WithLogger(logger))
	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()

	if err := f.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start feed")
		return
	}
	defer f.Stop()

	forwarder := mirror.NewForwarder(h.mirror, view, sessionID, logger)
	defer forwarder.Close()

	logger.Info("Dashboard mounted")
	defer logger.Info("Dashboard unmounted")

	// The client never sends anything we act on; reading only notices the
	// socket going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeUpdate(conn, build(f.Snapshot())); err != nil {
		logger.WithError(err).Debug("Failed to send initial update")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case buses, ok := <-updates:
			if !ok {
				return
			}
			if err := writeUpdate(conn, build(buses)); err != nil {
				logger.WithError(err).Debug("Failed to send update")
				return
			}
			forwarder.Offer(buses)
		}
	}
}

func writeUpdate(conn *websocket.Conn, update mapview.Update) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(update)
}
