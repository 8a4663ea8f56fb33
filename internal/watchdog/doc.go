// Package watchdog implements a software multi-watchdog registry.
//
// Each monitored task owns a Node with a timeout interval and periodically
// feeds it to signal liveness. A single supervisory context calls
// (*Registry).Check to verify every registered node has been fed within its
// interval, which lets one hardware reset watchdog be fed only while all
// tasks are healthy. On the first detected expiration the registry latches:
// the expired flag and the detection timestamp are frozen until an explicit
// re-initialization, and NextExpired enumerates the offending nodes against
// that frozen timestamp.
//
// The registry keeps nodes on an intrusive singly-linked list and never
// allocates. It also holds no locks: callers running Check, Add, or Remove
// from more than one goroutine must serialize those calls themselves (the
// muxer package wraps a registry with injected clock and locking hooks).
package watchdog
