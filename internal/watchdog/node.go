package watchdog

// Node is a single software watchdog. Each monitored task owns one,
// typically as a long-lived value allocated once for the task's lifetime.
//
// A node is identified by its address: the registry links nodes into an
// intrusive list through their next pointers and compares pointers to decide
// membership. A linked node must therefore not be copied: the copy would
// have a different identity and the original's next pointer would still be
// live in the list. The zero value is ready to use.
//
// All timestamps and intervals are in milliseconds on a free-running uint32
// clock; arithmetic on them wraps.
type Node struct {
	// timeoutMS is the timeout interval. Set by (*Registry).Add and
	// read-only from the node's own perspective thereafter.
	timeoutMS uint32

	// lastFedMS is the clock sample of the most recent feed. Updated by
	// Feed and by (*Registry).Add.
	lastFedMS uint32

	// id is the caller-assigned identifier, set via AssignID. The registry
	// never interprets or modifies it; it exists so the caller can tell
	// which node NextExpired is reporting. Defaults to 0.
	id uint32

	// next links to the following registered node, or nil if this node is
	// the list tail or is not registered.
	next *Node

	noCopy noCopy
}

// ID returns the caller-assigned identifier, 0 if none was assigned.
func (n *Node) ID() uint32 {
	return n.id
}

// TimeoutMS returns the timeout interval set at registration.
func (n *Node) TimeoutMS() uint32 {
	return n.timeoutMS
}

// LastFedMS returns the clock sample of the most recent feed.
func (n *Node) LastFedMS() uint32 {
	return n.lastFedMS
}

// Feed overwrites the node's last-fed timestamp with now. Tasks call this
// periodically to signal liveness.
//
// Feed writes only to the node itself, never to registry state, so it does
// not need the registry serialized against it. Feeding a node that is not
// registered is harmless. A nil node is a no-op.
func Feed(n *Node, now uint32) {
	if n == nil {
		return
	}
	n.lastFedMS = now
}

// AssignID stores a caller-chosen identifier on the node. It may be called
// at any time, before or after registration, and survives any number of Add
// calls. A nil node is a no-op.
func AssignID(n *Node, id uint32) {
	if n == nil {
		return
	}
	n.id = id
}

// noCopy triggers `go vet -copylocks` when a containing struct is copied by
// value. Nodes are address-identified, so copying a linked node is a bug.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
