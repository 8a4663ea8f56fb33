// Package muxer wraps a watchdog registry with the two collaborators the
// core deliberately leaves out: a millisecond clock and a mutual-exclusion
// pair. It is the embedding layer through which tasks scattered across the
// process reach one shared registry.
package muxer

import (
	"errors"
	"sync/atomic"

	"github.com/croftbw/watchmux/internal/model"
	"github.com/croftbw/watchmux/internal/watchdog"
)

// Hooks supplies the external collaborators for a Muxer.
type Hooks struct {
	// Now returns the current time on a monotonic millisecond clock,
	// monotonic modulo 2^32. Required.
	Now func() uint32

	// Lock and Unlock form a critical-section pair wrapped around every
	// registry operation. Both may be nil when the caller guarantees
	// serialization by other means (for example a single goroutine owning
	// the muxer). If one is set, both must be.
	Lock   func()
	Unlock func()
}

func (h Hooks) validate() error {
	if h.Now == nil {
		return errors.New("muxer: Hooks.Now is required")
	}
	if (h.Lock == nil) != (h.Unlock == nil) {
		return errors.New("muxer: Hooks.Lock and Hooks.Unlock must be set together")
	}
	return nil
}

// Muxer serializes access to a single watchdog registry and stamps
// operations with the injected clock. Every node-taking method tolerates a
// nil node as a no-op, matching the registry's own contract.
type Muxer struct {
	hooks Hooks
	reg   watchdog.Registry

	// latched mirrors the registry's expired flag so that Check can take a
	// lock-free fast path. The flag only transitions false to true inside
	// the critical section; a stale read of true is always correct, and a
	// stale read of false just falls through to the locked path.
	latched atomic.Bool
}

// New returns a Muxer using the given hooks.
func New(h Hooks) (*Muxer, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &Muxer{hooks: h}, nil
}

func (m *Muxer) lock() {
	if m.hooks.Lock != nil {
		m.hooks.Lock()
	}
}

func (m *Muxer) unlock() {
	if m.hooks.Unlock != nil {
		m.hooks.Unlock()
	}
}

// Init resets the underlying registry to the empty, unlatched state.
func (m *Muxer) Init() {
	m.lock()
	m.reg.Init()
	m.latched.Store(false)
	m.unlock()
}

// Add registers the node with the given timeout, stamped at the current
// clock reading. Re-adding a registered node refreshes its timestamp and
// overwrites its timeout without creating a duplicate.
func (m *Muxer) Add(n *watchdog.Node, timeoutMS uint32) {
	if n == nil {
		return
	}
	m.lock()
	m.reg.Add(n, timeoutMS, m.hooks.Now())
	m.unlock()
}

// Remove unregisters the node. Safe to call any number of times.
func (m *Muxer) Remove(n *watchdog.Node) {
	if n == nil {
		return
	}
	m.lock()
	m.reg.Remove(n)
	m.unlock()
}

// Feed refreshes the node's liveness timestamp to the current clock reading.
func (m *Muxer) Feed(n *watchdog.Node) {
	if n == nil {
		return
	}
	m.lock()
	watchdog.Feed(n, m.hooks.Now())
	m.unlock()
}

// AssignID stores a caller-chosen identifier on the node.
func (m *Muxer) AssignID(n *watchdog.Node, id uint32) {
	if n == nil {
		return
	}
	m.lock()
	watchdog.AssignID(n, id)
	m.unlock()
}

// Check reports whether any registered node has expired. Once the registry
// has latched, Check answers from the atomic mirror without entering the
// critical section at all.
func (m *Muxer) Check() bool {
	if m.latched.Load() {
		return true
	}

	m.lock()
	expired := m.reg.Check(m.hooks.Now())
	if expired {
		m.latched.Store(true)
	}
	m.unlock()
	return expired
}

// Expired reports whether the registry has latched, without locking.
func (m *Muxer) Expired() bool {
	return m.latched.Load()
}

// ExpiredIDs drains a full enumeration of the nodes that were over
// threshold at the frozen detection instant, in list traversal order.
// It returns nil if the registry has not latched.
func (m *Muxer) ExpiredIDs() []uint32 {
	m.lock()
	defer m.unlock()

	var cursor watchdog.Cursor
	var ids []uint32
	for {
		id, ok := m.reg.NextExpired(&cursor)
		if !ok {
			return ids
		}
		ids = append(ids, id)
	}
}

// ExpiredAtMS returns the frozen detection timestamp, 0 if not latched.
func (m *Muxer) ExpiredAtMS() uint32 {
	m.lock()
	defer m.unlock()
	return m.reg.ExpiredAtMS()
}

// Snapshot reports the live state of every registered node, evaluated
// against the current clock (not the latch snapshot): it answers "who looks
// healthy right now", while ExpiredIDs answers "who was in violation when
// the latch tripped".
func (m *Muxer) Snapshot() []model.NodeStatus {
	m.lock()
	defer m.unlock()

	now := m.hooks.Now()
	var out []model.NodeStatus
	m.reg.Range(func(n *watchdog.Node) bool {
		elapsed := now - n.LastFedMS()
		out = append(out, model.NodeStatus{
			ID:        n.ID(),
			TimeoutMS: n.TimeoutMS(),
			LastFedMS: n.LastFedMS(),
			ElapsedMS: elapsed,
			Expired:   elapsed > n.TimeoutMS(),
		})
		return true
	})
	return out
}
