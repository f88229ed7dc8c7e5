package mirror

import (
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

// Forwarder publishes one session's snapshots from its own goroutine, so a
// slow or unreachable broker never holds up the dashboard. When the broker
// lags, only the newest pending snapshot is kept.
type Forwarder struct {
	publisher Publisher
	view      string
	sessionID string
	logger    *log.Entry

	pending chan []models.Bus
	done    chan struct{}
}

// NewForwarder starts a forwarder for one view session. A nil logger uses
// the standard logger.
func NewForwarder(publisher Publisher, view, sessionID string, logger *log.Entry) *Forwarder {
	if publisher == nil {
		publisher = Nop{}
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	f := &Forwarder{
		publisher: publisher,
		view:      view,
		sessionID: sessionID,
		logger:    logger,
		pending:   make(chan []models.Bus, 1),
		done:      make(chan struct{}),
	}
	go f.run()
	return f
}

// Offer queues a snapshot without blocking, replacing one not yet published.
// It must not be called after Close.
func (f *Forwarder) Offer(buses []models.Bus) {
	for {
		select {
		case f.pending <- buses:
			return
		default:
		}
		select {
		case <-f.pending:
		default:
		}
	}
}

// Close publishes whatever is still pending and waits for the goroutine.
func (f *Forwarder) Close() {
	close(f.pending)
	<-f.done
}

func (f *Forwarder) run() {
	defer close(f.done)
	for buses := range f.pending {
		if err := f.publisher.Publish(f.view, f.sessionID, buses); err != nil {
			f.logger.WithError(err).Warn("Failed to mirror snapshot")
		}
	}
}
