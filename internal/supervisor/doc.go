// Package supervisor runs the periodic check over the shared watchdog
// registry. While all nodes are healthy it gates the downstream reset
// watchdog; on the first detected expiration it records which nodes were in
// violation, then stops feeding.
package supervisor
