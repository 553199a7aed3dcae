// Package connection drives reconnection of a peer session.
//
// The peer itself never reconnects: after a disconnect it settles in the
// Disconnected state and waits for the host to call Connect again. A
// Reconnector runs that loop for the host, spacing attempts with an
// exponential Backoff:
//
//	1s, 2s, 4s, 8s, 16s, 32s, 60s, 60s, ...
//
// Each delay gets up to 25% random jitter so that many clients dropped by
// the same server do not come back in lockstep:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// An attempt counts as successful only once the peer reports StatusConnect.
// A transport that dials but is then rejected by the server does not reset
// the backoff.
package connection
