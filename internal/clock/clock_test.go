package clock_test

import (
	"math"
	"testing"
	"time"

	"github.com/croftbw/watchmux/internal/clock"
)

func TestWallAdvances(t *testing.T) {
	w := clock.NewWall()

	before := w.NowMS()
	time.Sleep(5 * time.Millisecond)
	after := w.NowMS()

	if after-before < 5 {
		t.Errorf("clock advanced %d ms over a 5 ms sleep", after-before)
	}
}

func TestManualSetAndAdvance(t *testing.T) {
	m := clock.NewManual(100)

	if got := m.NowMS(); got != 100 {
		t.Errorf("NowMS() = %d, want 100", got)
	}

	m.Advance(50)
	if got := m.NowMS(); got != 150 {
		t.Errorf("NowMS() after Advance(50) = %d, want 150", got)
	}

	m.Set(10)
	if got := m.NowMS(); got != 10 {
		t.Errorf("NowMS() after Set(10) = %d, want 10", got)
	}
}

func TestManualWrapsAround(t *testing.T) {
	m := clock.NewManual(math.MaxUint32 - 10)

	m.Advance(20)
	if got := m.NowMS(); got != 9 {
		t.Errorf("NowMS() after wrap = %d, want 9", got)
	}
}
