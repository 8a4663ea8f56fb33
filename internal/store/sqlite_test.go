package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/croftbw/watchmux/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestEvent(nodeID uint32) *model.ExpiryEvent {
	return &model.ExpiryEvent{
		ID:           model.NewID(),
		NodeID:       nodeID,
		DetectedAtMS: 1500,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestRecordAndGetExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := makeTestEvent(7)

	if err := s.RecordExpiry(ctx, e); err != nil {
		t.Fatalf("RecordExpiry: %v", err)
	}

	got, err := s.GetExpiry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpiry: %v", err)
	}

	if got.ID != e.ID {
		t.Errorf("ID = %q, want %q", got.ID, e.ID)
	}
	if got.NodeID != e.NodeID {
		t.Errorf("NodeID = %d, want %d", got.NodeID, e.NodeID)
	}
	if got.DetectedAtMS != e.DetectedAtMS {
		t.Errorf("DetectedAtMS = %d, want %d", got.DetectedAtMS, e.DetectedAtMS)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestGetExpiryNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetExpiry(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExpiry on missing id: err = %v, want ErrNotFound", err)
	}
}

func TestListExpiriesPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.RecordExpiry(ctx, makeTestEvent(uint32(i+1))); err != nil {
			t.Fatalf("RecordExpiry #%d: %v", i, err)
		}
	}

	events, total, err := s.ListExpiries(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListExpiries: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	// ULIDs ascend over time, and the list is ordered by id DESC, so the
	// first page holds the most recent events.
	if events[0].ID < events[1].ID {
		t.Errorf("events not in newest-first order: %q before %q", events[0].ID, events[1].ID)
	}

	rest, _, err := s.ListExpiries(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListExpiries offset 2: %v", err)
	}
	if len(rest) != 3 {
		t.Errorf("len(rest) = %d, want 3", len(rest))
	}
}

func TestListExpiriesEmpty(t *testing.T) {
	s := newTestStore(t)

	events, total, err := s.ListExpiries(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListExpiries: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}
