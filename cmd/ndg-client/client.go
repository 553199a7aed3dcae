package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/cmd/ndg-client/interactive"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/connection"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/metrics"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// client owns the peer and implements its listener. Listener callbacks run
// on the service goroutine.
type client struct {
	address string
	appID   string
	encrypt bool

	peer        *peer.Peer
	reconnector *connection.Reconnector
	collector   *metrics.Collector

	mu  sync.Mutex
	out io.Writer
}

func (c *client) Peer() *peer.Peer { return c.peer }

// Connect starts a session. With a reconnector, failures are retried.
func (c *client) Connect() error {
	if c.reconnector != nil {
		c.reconnector.SetEnabled(true)
		return c.reconnector.Connect()
	}
	return c.peer.Connect(c.address, c.appID, nil)
}

// Disconnect ends the session and suppresses the reconnect it would cause.
func (c *client) Disconnect() {
	if c.reconnector != nil {
		c.reconnector.SetEnabled(false)
	}
	c.peer.Disconnect()
}

func (c *client) setOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

func (c *client) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// OnStatusChanged implements peer.Listener.
func (c *client) OnStatusChanged(code peer.StatusCode) {
	c.printf("[STATUS] %s (%d)", code, int(code))
	if c.collector != nil {
		c.collector.ObserveStatus(code)
	}
	if c.reconnector != nil {
		c.reconnector.HandleStatus(code)
	}
	if code == peer.StatusConnect && c.encrypt {
		if !c.peer.EstablishEncryption() {
			c.printf("[STATUS] key exchange could not be started")
		}
	}
}

// OnOperationResponse implements peer.Listener.
func (c *client) OnOperationResponse(resp *wire.OperationResponse) {
	c.printf("%s", interactive.FormatResponse(resp))
}

// OnEvent implements peer.Listener.
func (c *client) OnEvent(ev *wire.EventData) {
	c.printf("%s", interactive.FormatEvent(ev))
}

// DebugReturn implements peer.Listener.
func (c *client) DebugReturn(level peer.DebugLevel, message string) {
	c.printf("[%s] %s", level, message)
}

// OnMessage implements peer.MessageListener.
func (c *client) OnMessage(isRaw bool, message any) {
	if isRaw {
		c.printf("[RAW] %s", interactive.FormatValue(message))
		return
	}
	c.printf("[MESSAGE] %s", interactive.FormatValue(message))
}

// serviceLoop drives the peer until ctx is done.
func (c *client) serviceLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.peer.Service()
		}
	}
}

// shutdown disconnects and services the peer until it settles or the
// timeout passes.
func (c *client) shutdown(timeout time.Duration) {
	if c.reconnector != nil {
		c.reconnector.Close()
	}
	if c.peer.State() == peer.StateDisconnected {
		return
	}
	c.peer.Disconnect()

	deadline := time.Now().Add(timeout)
	for c.peer.State() != peer.StateDisconnected && time.Now().Before(deadline) {
		c.peer.Service()
		time.Sleep(10 * time.Millisecond)
	}
	if c.peer.State() != peer.StateDisconnected {
		log.Printf("Peer did not settle, forcing stop (state %s)", c.peer.State())
		c.peer.StopConnection()
	}
}

var (
	_ peer.Listener        = (*client)(nil)
	_ peer.MessageListener = (*client)(nil)
	_ interactive.Client   = (*client)(nil)
)
