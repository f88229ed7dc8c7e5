package feed

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

const (
	// DefaultInterval is how often a dashboard's buses move.
	DefaultInterval = 3 * time.Second
	// MaxDelta bounds the per-tick move of latitude and longitude, in degrees.
	MaxDelta = 0.0005
	// StatusChangeChance is the per-tick probability of picking a new status.
	StatusChangeChance = 0.1
)

var (
	ErrAlreadyStarted = errors.New("feed already started")
	ErrStopped        = errors.New("feed stopped")
)

// Rand is the randomness a feed draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Jitter moves loc by a uniform offset in [-MaxDelta, MaxDelta) on each axis.
func Jitter(loc models.Location, r Rand) models.Location {
	dLat := (r.Float64()*2 - 1) * MaxDelta
	dLng := (r.Float64()*2 - 1) * MaxDelta
	return models.Location{Lat: loc.Lat + dLat, Lng: loc.Lng + dLng}
}

// NextStatus keeps current unless the StatusChangeChance roll hits, in which
// case any of the four labels may come up, current included.
func NextStatus(current models.Status, r Rand) models.Status {
	if r.Float64() >= StatusChangeChance {
		return current
	}
	statuses := models.Statuses()
	return statuses[r.Intn(len(statuses))]
}

// Step advances one bus by one tick.
func Step(bus models.Bus, r Rand, now time.Time) models.Bus {
	bus.Location = Jitter(bus.Location, r)
	bus.Status = NextStatus(bus.Status, r)
	bus.LastUpdate = now
	return bus
}

// Feed moves a fixed set of buses on a timer and tells subscribers about it.
// A feed is owned by exactly one dashboard session.
type Feed struct {
	interval time.Duration
	rng      Rand
	now      func() time.Time
	logger   *log.Entry

	mu     sync.RWMutex
	buses  []models.Bus
	subs   map[int]chan []models.Bus
	nextID int

	lifecycle sync.Mutex
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Feed
type Option func(*Feed)

// WithInterval sets the tick interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithRand replaces the random source, mostly for tests.
func WithRand(r Rand) Option {
	return func(f *Feed) {
		if r != nil {
			f.rng = r
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger attaches session fields to the feed's log lines.
func WithLogger(entry *log.Entry) Option {
	return func(f *Feed) {
		if entry != nil {
			f.logger = entry
		}
	}
}

// New creates a feed over a private copy of seed.
func New(seed []models.Bus, opts ...Option) *Feed {
	f := &Feed{
		interval: DefaultInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		logger:   log.NewEntry(log.StandardLogger()),
		buses:    models.CopyBuses(seed),
		subs:     make(map[int]chan []models.Bus),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Interval returns the tick interval.
func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Start launches the ticker. The feed runs until Stop is called or ctx ends.
// A stopped feed cannot be restarted.
func (f *Feed) Start(ctx context.Context) error {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()
	if f.stopped {
		return ErrStopped
	}
	if f.started {
		return ErrAlreadyStarted
	}
	f.started = true

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	go f.run(runCtx)

	f.logger.WithFields(log.Fields{
		"buses":    len(f.buses),
		"interval": f.interval,
	}).Debug("Feed started")
	return nil
}

// Stop cancels the ticker and waits for it to exit. Once Stop returns no
// further update is produced and every subscriber channel is closed.
func (f *Feed) Stop() {
	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()
	if f.stopped {
		return
	}
	f.stopped = true

	if f.started {
		f.cancel()
		<-f.done
	}
	f.closeSubscribers()
	f.logger.Debug("Feed stopped")
}

func (f *Feed) run(ctx context.Context) {
	defer close(f.done)
	tick := time.NewTicker(f.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			// a tick and a cancel can race; cancel wins
			if ctx.Err() != nil {
				return
			}
			f.Advance()
		}
	}
}

// Advance applies one tick to every bus and notifies subscribers. The ticker
// calls it; tests may call it directly on a feed that was never started.
func (f *Feed) Advance() []models.Bus {
	f.mu.Lock()
	now := f.now()
	for i := range f.buses {
		f.buses[i] = Step(f.buses[i], f.rng, now)
	}
	snapshot := models.CopyBuses(f.buses)
	for _, ch := range f.subs {
		offer(ch, models.CopyBuses(snapshot))
	}
	f.mu.Unlock()

	f.logger.WithField("buses", len(snapshot)).Trace("Feed advanced")
	return snapshot
}

// offer hands the newest snapshot to a buffered channel, replacing any
// snapshot the reader has not picked up yet.
func offer(ch chan []models.Bus, snapshot []models.Bus) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Snapshot returns a copy of the buses in seed order.
func (f *Feed) Snapshot() []models.Bus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return models.CopyBuses(f.buses)
}

// Subscribe registers for snapshots. The returned func unsubscribes and
// closes the channel; calling it more than once is fine.
func (f *Feed) Subscribe() (<-chan []models.Bus, func()) {
	ch := make(chan []models.Bus, 1)

	f.lifecycle.Lock()
	defer f.lifecycle.Unlock()
	if f.stopped {
		close(ch)
		return ch, func() {}
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
}

func (f *Feed) closeSubscribers() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
