// Package peer implements the client side of an NDG session.
//
// A Peer owns one logical connection to a server. It frames outgoing
// operations, messages and internal requests into per-send buffers, keeps
// them in an outgoing queue until the host flushes, and parks every frame
// received by the transport in an incoming queue until the host dispatches.
//
// The host drives the peer from its own loop:
//
//	for running {
//	    p.Service() // dispatch everything, then flush
//	    time.Sleep(10 * time.Millisecond)
//	}
//
// Listener callbacks (status changes, responses, events, debug output) are
// invoked from DispatchIncomingCommands only, so they always run on the
// host's goroutine. Transports own their read goroutines and hand frames to
// the peer through the Receiver interface.
//
// Connection lifecycle:
//
//	Disconnected --Connect--> Connecting --InitResponse--> Connected
//	Connected --Disconnect/timeout--> Disconnecting --closed--> Disconnected
//	Disconnecting --teardown error--> Zombie
//
// StopConnection forces Disconnected from any state.
package peer
