package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("reconnector closed")

// State is the reconnector's view of the session.
type State uint8

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateWaiting
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateWaiting:
		return "WAITING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc starts one connection attempt. It returns once the attempt
// has been started; the outcome is reported through HandleStatus.
type ConnectFunc func(ctx context.Context) error

// Options configures a Reconnector.
type Options struct {
	Backoff BackoffConfig

	// MaxAttempts stops retrying after this many failed attempts in a row.
	// Zero retries forever.
	MaxAttempts int

	Logger *slog.Logger

	// OnAttempt is called before waiting for the next attempt.
	OnAttempt func(attempt int, delay time.Duration)

	// OnGiveUp is called when MaxAttempts is exhausted.
	OnGiveUp func(attempts int)
}

// Reconnector restarts a peer session after it drops. The host feeds it
// the peer's status codes; it calls ConnectFunc from its own goroutine.
type Reconnector struct {
	mu      sync.Mutex
	state   State
	enabled bool

	backoff *Backoff
	connect ConnectFunc
	opts    Options
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	kick   chan struct{}
}

// NewReconnector returns an idle reconnector with reconnection enabled.
func NewReconnector(connect ConnectFunc, opts Options) *Reconnector {
	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reconnector{
		enabled: true,
		backoff: NewBackoffWithConfig(opts.Backoff),
		connect: connect,
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		kick:    make(chan struct{}, 1),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// State returns the current state.
func (r *Reconnector) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetEnabled turns automatic reconnection on or off. Turn it off before a
// deliberate Disconnect so the resulting status does not trigger a retry.
func (r *Reconnector) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Attempts returns the number of retries since the last successful connect.
func (r *Reconnector) Attempts() int {
	return r.backoff.Attempts()
}

// Connect makes the first attempt immediately. A failure to start it
// schedules a retry when reconnection is enabled.
func (r *Reconnector) Connect() error {
	r.mu.Lock()
	if r.state == StateClosed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.state = StateConnecting
	r.mu.Unlock()

	err := r.connect(r.ctx)
	if err != nil {
		r.lost()
	}
	return err
}

// HandleStatus updates the reconnector from a peer status code. Call it
// from the listener's OnStatusChanged.
func (r *Reconnector) HandleStatus(code peer.StatusCode) {
	switch code {
	case peer.StatusConnect:
		r.mu.Lock()
		if r.state != StateClosed {
			r.state = StateConnected
			r.backoff.Reset()
		}
		r.mu.Unlock()
	case peer.StatusDisconnect,
		peer.StatusExceptionOnConnect,
		peer.StatusSecurityExceptionOnConnect,
		peer.StatusTimeoutDisconnect,
		peer.StatusDisconnectByServerTimeout,
		peer.StatusDisconnectByServerUserLimit,
		peer.StatusDisconnectByServerLogic,
		peer.StatusDisconnectByServerReasonUnknown:
		r.lost()
	}
}

// Close stops the retry loop and waits for it to exit.
func (r *Reconnector) Close() {
	r.mu.Lock()
	if r.state == StateClosed {
		r.mu.Unlock()
		return
	}
	r.state = StateClosed
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Reconnector) lost() {
	r.mu.Lock()
	if r.state == StateClosed || r.state == StateWaiting {
		r.mu.Unlock()
		return
	}
	if !r.enabled {
		r.state = StateIdle
		r.mu.Unlock()
		return
	}
	r.state = StateWaiting
	r.mu.Unlock()

	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Reconnector) loop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.kick:
			r.retry()
		}
	}
}

// retry makes one attempt after the next backoff delay. A failed start
// goes straight to the next delay; a started attempt waits for the peer's
// status.
func (r *Reconnector) retry() {
	for {
		if r.opts.MaxAttempts > 0 && r.backoff.Attempts() >= r.opts.MaxAttempts {
			attempts := r.backoff.Attempts()
			r.mu.Lock()
			if r.state == StateWaiting {
				r.state = StateIdle
			}
			r.mu.Unlock()
			r.logger.Warn("giving up reconnect", "attempts", attempts)
			if r.opts.OnGiveUp != nil {
				r.opts.OnGiveUp(attempts)
			}
			return
		}

		delay := r.backoff.Next()
		attempt := r.backoff.Attempts()
		if r.opts.OnAttempt != nil {
			r.opts.OnAttempt(attempt, delay)
		}
		r.logger.Info("reconnecting", "attempt", attempt, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-r.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		r.mu.Lock()
		if r.state != StateWaiting || !r.enabled {
			r.mu.Unlock()
			return
		}
		r.state = StateConnecting
		r.mu.Unlock()

		err := r.connect(r.ctx)
		if err == nil {
			return
		}
		r.logger.Debug("reconnect attempt failed", "attempt", attempt, "error", err)

		r.mu.Lock()
		if r.state != StateConnecting {
			// A status callback already moved us on.
			r.mu.Unlock()
			return
		}
		r.state = StateWaiting
		r.mu.Unlock()
	}
}
