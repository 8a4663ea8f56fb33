package supervisor_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/croftbw/watchmux/internal/clock"
	"github.com/croftbw/watchmux/internal/model"
	"github.com/croftbw/watchmux/internal/muxer"
	"github.com/croftbw/watchmux/internal/supervisor"
	"github.com/croftbw/watchmux/internal/watchdog"
)

// stubStore records expiry events in memory.
type stubStore struct {
	mu     sync.Mutex
	events []model.ExpiryEvent
}

func (s *stubStore) RecordExpiry(_ context.Context, e *model.ExpiryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *stubStore) GetExpiry(_ context.Context, _ string) (*model.ExpiryEvent, error) {
	return nil, nil
}

func (s *stubStore) ListExpiries(_ context.Context, _, _ int) ([]*model.ExpiryEvent, int, error) {
	return nil, 0, nil
}

func (s *stubStore) Close() error { return nil }

func (s *stubStore) recorded() []model.ExpiryEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ExpiryEvent(nil), s.events...)
}

func newTestMuxer(t *testing.T) (*muxer.Muxer, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(0)
	m, err := muxer.New(muxer.Hooks{Now: clk.NowMS})
	if err != nil {
		t.Fatalf("muxer.New: %v", err)
	}
	return m, clk
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestFeedsWhileHealthy(t *testing.T) {
	m, clk := newTestMuxer(t)
	var n watchdog.Node
	m.Add(&n, 1000)

	feeds := 0
	sup := supervisor.New(m, nil, discardLogger(), supervisor.Config{
		FeedFunc: func() { feeds++ },
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		clk.Advance(100)
		m.Feed(&n)
		sup.Tick(ctx)
	}

	if feeds != 3 {
		t.Errorf("FeedFunc ran %d times, want 3", feeds)
	}
}

func TestDetectsReportsAndStopsFeeding(t *testing.T) {
	m, clk := newTestMuxer(t)
	var n watchdog.Node
	m.AssignID(&n, 5)
	m.Add(&n, 100)

	st := &stubStore{}
	feeds := 0
	var alarms [][]uint32
	sup := supervisor.New(m, st, discardLogger(), supervisor.Config{
		FeedFunc:  func() { feeds++ },
		AlarmFunc: func(ids []uint32) { alarms = append(alarms, ids) },
	})

	events, unsub := sup.Broker().Subscribe()
	defer unsub()

	ctx := context.Background()
	clk.Advance(500)
	sup.Tick(ctx)
	sup.Tick(ctx)
	sup.Tick(ctx)

	if feeds != 0 {
		t.Errorf("FeedFunc ran %d times after expiry, want 0", feeds)
	}
	if len(alarms) != 1 {
		t.Fatalf("AlarmFunc ran %d times, want exactly 1", len(alarms))
	}
	if len(alarms[0]) != 1 || alarms[0][0] != 5 {
		t.Errorf("alarm ids = %v, want [5]", alarms[0])
	}

	recorded := st.recorded()
	if len(recorded) != 1 {
		t.Fatalf("store holds %d events, want 1", len(recorded))
	}
	if recorded[0].NodeID != 5 {
		t.Errorf("event NodeID = %d, want 5", recorded[0].NodeID)
	}
	if recorded[0].DetectedAtMS != 500 {
		t.Errorf("event DetectedAtMS = %d, want 500", recorded[0].DetectedAtMS)
	}

	select {
	case e := <-events:
		if e.NodeID != 5 {
			t.Errorf("broadcast NodeID = %d, want 5", e.NodeID)
		}
	default:
		t.Error("no event broadcast to subscriber")
	}
}

func TestFeedAfterDetectionStillReported(t *testing.T) {
	m, clk := newTestMuxer(t)
	var n watchdog.Node
	m.AssignID(&n, 2)
	m.Add(&n, 100)

	st := &stubStore{}
	sup := supervisor.New(m, st, discardLogger(), supervisor.Config{})

	clk.Advance(300)
	if !m.Check() {
		t.Fatal("Check() = false, want true")
	}

	// The task wakes up late and feeds between detection and reporting.
	m.Feed(&n)
	sup.Tick(context.Background())

	recorded := st.recorded()
	if len(recorded) != 1 || recorded[0].NodeID != 2 {
		t.Errorf("recorded events = %+v, want one event for node 2", recorded)
	}
}

func TestResetArmsNewEpoch(t *testing.T) {
	m, clk := newTestMuxer(t)
	var n watchdog.Node
	m.AssignID(&n, 1)
	m.Add(&n, 100)

	st := &stubStore{}
	feeds := 0
	sup := supervisor.New(m, st, discardLogger(), supervisor.Config{
		FeedFunc: func() { feeds++ },
	})

	ctx := context.Background()
	clk.Advance(500)
	sup.Tick(ctx)
	if len(st.recorded()) != 1 {
		t.Fatalf("store holds %d events, want 1", len(st.recorded()))
	}

	sup.Reset()
	m.Add(&n, 100)
	sup.Tick(ctx)

	if feeds != 1 {
		t.Errorf("FeedFunc ran %d times after reset, want 1", feeds)
	}

	// The new epoch can latch and report again.
	clk.Advance(500)
	sup.Tick(ctx)
	if len(st.recorded()) != 2 {
		t.Errorf("store holds %d events, want 2 (one per epoch)", len(st.recorded()))
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	m, _ := newTestMuxer(t)
	sup := supervisor.New(m, nil, discardLogger(), supervisor.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	sup.Start(ctx)
	cancel()
	sup.Wait()
}
