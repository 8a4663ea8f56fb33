package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/croftbw/watchmux/internal/model"
	"github.com/croftbw/watchmux/internal/muxer"
	"github.com/croftbw/watchmux/internal/store"
)

// DefaultInterval is the check cadence when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Config tunes a Supervisor.
type Config struct {
	// Interval between supervisory checks. Defaults to DefaultInterval.
	Interval time.Duration

	// FeedFunc, when set, is invoked after every healthy check. This is the
	// hardware-watchdog gate: it runs only while every node is healthy and
	// never again once the registry latches.
	FeedFunc func()

	// AlarmFunc, when set, is invoked exactly once per latch epoch with the
	// ids of the nodes that were over threshold at detection.
	AlarmFunc func(ids []uint32)
}

// Supervisor runs the single supervisory context the watchdog design calls
// for: a periodic check over the shared registry, feeding the downstream
// reset watchdog while healthy, and turning the first detected expiration
// into log records, persisted events, metrics and a broadcast.
type Supervisor struct {
	mux    *muxer.Muxer
	store  store.Store
	logger *slog.Logger
	broker *EventBroker
	cfg    Config

	// reported flips when the latch has been turned into events, so the
	// loop reports each latch epoch once and then goes inert.
	reported atomic.Bool

	wg sync.WaitGroup
}

// New creates a Supervisor over the given muxer. The store may be nil, in
// which case expiry events are not persisted.
func New(mux *muxer.Muxer, st store.Store, logger *slog.Logger, cfg Config) *Supervisor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Supervisor{
		mux:    mux,
		store:  st,
		logger: logger,
		broker: NewEventBroker(),
		cfg:    cfg,
	}
}

// Broker returns the supervisor's event broker for SSE subscription.
func (s *Supervisor) Broker() *EventBroker {
	return s.broker
}

// Start launches the supervisory loop. The loop runs until ctx is canceled.
func (s *Supervisor) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Wait blocks until the supervisory loop has exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Reset re-initializes the registry to the empty, unlatched state and arms
// the supervisor for a new latch epoch. All nodes must re-register.
func (s *Supervisor) Reset() {
	s.mux.Init()
	s.reported.Store(false)
	latched.Set(0)
	s.logger.Info("registry reset")
}

func (s *Supervisor) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("supervisor stopping", "cause", context.Cause(ctx))
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one supervisory check. It is exported so that callers
// driving a manual clock (tests, the simulator) can step the supervisor
// without waiting on the ticker.
func (s *Supervisor) Tick(ctx context.Context) {
	if !s.mux.Check() {
		checksTotal.WithLabelValues(model.HealthOK).Inc()
		if s.cfg.FeedFunc != nil {
			s.cfg.FeedFunc()
		}
		return
	}

	checksTotal.WithLabelValues(model.HealthExpired).Inc()

	// Report the latch once; later ticks land here via the fast path and
	// have nothing left to do. The hardware feed stays off either way.
	if !s.reported.CompareAndSwap(false, true) {
		return
	}

	ids := s.mux.ExpiredIDs()
	detectedAt := s.mux.ExpiredAtMS()
	latched.Set(1)

	s.logger.Error("watchdog expired",
		"detected_at_ms", detectedAt,
		"node_ids", ids,
	)

	now := time.Now().UTC()
	for _, id := range ids {
		expiredNodesTotal.Inc()
		event := model.ExpiryEvent{
			ID:           model.NewID(),
			NodeID:       id,
			DetectedAtMS: detectedAt,
			CreatedAt:    now,
		}
		if s.store != nil {
			if err := s.store.RecordExpiry(ctx, &event); err != nil {
				s.logger.Error("persist expiry event", "node_id", id, "error", err)
			}
		}
		s.broker.Publish(event)
	}

	if s.cfg.AlarmFunc != nil {
		s.cfg.AlarmFunc(ids)
	}
}
