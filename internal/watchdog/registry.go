package watchdog

// Registry owns the head of the intrusive list of registered nodes and the
// latched expiration state. The zero value is an empty, unlatched registry.
//
// The registry performs no locking of its own. At most one mutating call
// may be in flight per registry at a time; concurrent callers must be
// serialized externally.
type Registry struct {
	// head is the first registered node, nil if the list is empty.
	head *Node

	// expired latches true on the first expiration Check detects and is
	// never cleared except by Init.
	expired bool

	// expiredAtMS is the clock sample captured at the instant expired first
	// became true. NextExpired evaluates nodes against this snapshot rather
	// than a live clock, so detection and enumeration agree on the point in
	// time being judged. Meaningless while expired is false.
	expiredAtMS uint32
}

// Init resets the registry to the empty, unlatched state. Idempotent.
//
// Previously registered nodes are detached from the registry's perspective,
// but their own next pointers are not cleared; a stale node must be
// re-registered through Add before reuse.
func (r *Registry) Init() {
	r.head = nil
	r.expired = false
	r.expiredAtMS = 0
}

// Expired reports whether the registry has latched into the expired state.
// It is a plain field read with no traversal, which is what allows the
// muxer's lock-free fast path: the flag only ever transitions false to
// true, so a stale read of true is always correct.
func (r *Registry) Expired() bool {
	return r.expired
}

// ExpiredAtMS returns the frozen detection timestamp. Only meaningful after
// Check has latched.
func (r *Registry) ExpiredAtMS() uint32 {
	return r.expiredAtMS
}

// Len returns the number of registered nodes. O(list length).
func (r *Registry) Len() int {
	n := 0
	for cur := r.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Range calls f for each registered node in traversal order (most recently
// added first) until f returns false. The list must not be mutated during
// the call.
func (r *Registry) Range(f func(*Node) bool) {
	for cur := r.head; cur != nil; cur = cur.next {
		if !f(cur) {
			return
		}
	}
}

// Add registers a node with the given timeout, stamping its last-fed
// timestamp to now and prepending it to the list.
//
// If the node is already registered (pointer comparison), the call acts as
// a combined Feed plus timeout overwrite instead: no duplicate entry is
// created and the list length is unchanged. The node's id is never touched,
// so an identifier assigned before or after registration survives.
// A nil node is a no-op.
func (r *Registry) Add(n *Node, timeoutMS, now uint32) {
	if n == nil {
		return
	}

	for cur := r.head; cur != nil; cur = cur.next {
		if cur == n {
			n.lastFedMS = now
			n.timeoutMS = timeoutMS
			return
		}
	}

	n.lastFedMS = now
	n.timeoutMS = timeoutMS
	n.next = r.head
	r.head = n
}

// Remove unlinks a previously registered node and clears its next pointer.
// If the node is not registered, including repeated calls on an
// already-removed node, Remove is a no-op. A nil node is a no-op.
func (r *Registry) Remove(n *Node) {
	if n == nil {
		return
	}

	var prev *Node
	for cur := r.head; cur != nil; cur = cur.next {
		if cur == n {
			if prev == nil {
				r.head = cur.next
			} else {
				prev.next = cur.next
			}
			n.next = nil
			return
		}
		prev = cur
	}
}

// Check walks the registered nodes and reports whether any has gone unfed
// longer than its timeout interval at time now.
//
// Elapsed time is computed as now - lastFedMS in uint32, which is correct
// across clock wraparound as long as no node goes unfed for more than half
// the 32-bit range (about 24.8 days at 1 ms resolution). The threshold test
// is strict: elapsed equal to the timeout is still healthy.
//
// On the first violating node, the registry latches (expired becomes true
// and expiredAtMS freezes at now) and Check returns true without scanning
// the rest of the list. Once latched, Check returns true immediately on
// every later call regardless of subsequent feeds, until Init.
func (r *Registry) Check(now uint32) bool {
	if r.expired {
		return true
	}

	for cur := r.head; cur != nil; cur = cur.next {
		if now-cur.lastFedMS > cur.timeoutMS {
			r.expired = true
			r.expiredAtMS = now
			return true
		}
	}

	return false
}

// Cursor tracks the position of a NextExpired enumeration. The zero value
// starts at the head of the list.
type Cursor struct {
	pos *Node
}

// Reset returns the cursor to the start of the list.
func (c *Cursor) Reset() {
	c.pos = nil
}

// NextExpired resumes the enumeration of expired nodes from the cursor's
// position and returns the id of the next node that was over threshold,
// advancing the cursor to it. It returns ok=false when the list is
// exhausted, or immediately if the registry has not latched.
//
// Nodes are evaluated with the same wraparound elapsed test as Check, but
// against the frozen expiredAtMS snapshot instead of a live clock. The
// enumeration therefore reports who was in violation at the instant the
// detecting Check ran. A node fed after that instant has a last-fed
// timestamp ahead of the snapshot; the wrapped subtraction turns that into
// a huge elapsed value, so such a node is still reported.
func (r *Registry) NextExpired(c *Cursor) (id uint32, ok bool) {
	if !r.expired {
		return 0, false
	}

	now := r.expiredAtMS

	start := r.head
	if c.pos != nil {
		start = c.pos.next
	}

	for cur := start; cur != nil; cur = cur.next {
		if now-cur.lastFedMS > cur.timeoutMS {
			c.pos = cur
			return cur.id, true
		}
	}

	return 0, false
}
