package muxer

import "sync"

// The process-wide default instance. Call sites that cannot be handed a
// *Muxer explicitly (library code hooked into many tasks) reach the shared
// registry through Default. Configure must run once, from a single context,
// before any use of Default; configuring again replaces the instance, which
// is the explicit re-initialization path.

var (
	defaultMu  sync.Mutex
	defaultMux *Muxer
)

// Configure installs the process-wide default Muxer built from h and
// returns it.
func Configure(h Hooks) (*Muxer, error) {
	m, err := New(h)
	if err != nil {
		return nil, err
	}

	defaultMu.Lock()
	defaultMux = m
	defaultMu.Unlock()
	return m, nil
}

// Default returns the process-wide Muxer, or nil if Configure has not been
// called.
func Default() *Muxer {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultMux
}
