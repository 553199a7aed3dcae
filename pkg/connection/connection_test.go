package connection

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()
		expected := []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			32 * time.Second,
			60 * time.Second,
			60 * time.Second,
		}
		for i, exp := range expected {
			assert.Equal(t, exp, b.Current(), "attempt %d", i)
			b.Next()
		}
		assert.Equal(t, len(expected), b.Attempts())
	})

	t.Run("Jitter", func(t *testing.T) {
		b := NewBackoff()
		seen := map[time.Duration]bool{}
		for range 20 {
			d := b.Peek()
			assert.GreaterOrEqual(t, d, time.Second)
			assert.LessOrEqual(t, d, 1250*time.Millisecond)
			seen[d] = true
		}
		assert.Greater(t, len(seen), 1, "jitter never varied")
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()
		for range 5 {
			b.Next()
		}
		assert.Greater(t, b.Current(), InitialBackoff)
		b.Reset()
		assert.Equal(t, InitialBackoff, b.Current())
		assert.Zero(t, b.Attempts())
	})

	t.Run("Custom", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial:    100 * time.Millisecond,
			Max:        250 * time.Millisecond,
			Multiplier: 3,
			Jitter:     -1,
		})
		assert.Equal(t, 100*time.Millisecond, b.Next())
		assert.Equal(t, 250*time.Millisecond, b.Next())
		assert.Equal(t, 250*time.Millisecond, b.Next())
	})

	t.Run("MaxBelowInitial", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Max: time.Millisecond, Jitter: -1})
		b.Next()
		assert.Equal(t, time.Second, b.Current())
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "WAITING", StateWaiting.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

var fastBackoff = BackoffConfig{Initial: time.Millisecond, Max: 4 * time.Millisecond, Jitter: -1}

func TestReconnectorRetriesUntilConnected(t *testing.T) {
	var calls atomic.Int32
	attempted := make(chan int32, 10)
	connect := func(ctx context.Context) error {
		n := calls.Add(1)
		attempted <- n
		if n < 3 {
			return errors.New("refused")
		}
		return nil
	}

	r := NewReconnector(connect, Options{Backoff: fastBackoff})
	defer r.Close()

	require.Error(t, r.Connect())
	for want := int32(2); want <= 3; want++ {
		select {
		case n := <-attempted:
			if n == 1 {
				n = <-attempted
			}
			assert.Equal(t, want, n)
		case <-time.After(2 * time.Second):
			t.Fatalf("attempt %d never happened", want)
		}
	}

	assert.Equal(t, StateConnecting, r.State())
	r.HandleStatus(peer.StatusConnect)
	assert.Equal(t, StateConnected, r.State())
	assert.Zero(t, r.Attempts())
}

func TestReconnectorRestartsAfterDrop(t *testing.T) {
	attempted := make(chan struct{}, 10)
	r := NewReconnector(func(ctx context.Context) error {
		attempted <- struct{}{}
		return nil
	}, Options{Backoff: fastBackoff})
	defer r.Close()

	require.NoError(t, r.Connect())
	<-attempted
	r.HandleStatus(peer.StatusConnect)

	r.HandleStatus(peer.StatusDisconnectByServerLogic)
	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("no reconnect after drop")
	}
	assert.Equal(t, 1, r.Attempts())
}

func TestReconnectorDisabled(t *testing.T) {
	var calls atomic.Int32
	r := NewReconnector(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, Options{Backoff: fastBackoff})
	defer r.Close()

	require.NoError(t, r.Connect())
	r.HandleStatus(peer.StatusConnect)

	r.SetEnabled(false)
	r.HandleStatus(peer.StatusDisconnect)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateIdle, r.State())
}

func TestReconnectorGivesUp(t *testing.T) {
	gaveUp := make(chan int, 1)
	var attempts []int
	r := NewReconnector(func(ctx context.Context) error {
		return errors.New("refused")
	}, Options{
		Backoff:     fastBackoff,
		MaxAttempts: 3,
		OnAttempt:   func(attempt int, delay time.Duration) { attempts = append(attempts, attempt) },
		OnGiveUp:    func(n int) { gaveUp <- n },
	})
	defer r.Close()

	require.Error(t, r.Connect())
	select {
	case n := <-gaveUp:
		assert.Equal(t, 3, n)
	case <-time.After(2 * time.Second):
		t.Fatal("never gave up")
	}
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, StateIdle, r.State())
}

func TestReconnectorClose(t *testing.T) {
	r := NewReconnector(func(ctx context.Context) error {
		return errors.New("refused")
	}, Options{Backoff: BackoffConfig{Initial: time.Hour}})

	require.Error(t, r.Connect())
	done := make(chan struct{})
	go func() {
		r.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a pending delay")
	}
	assert.Equal(t, StateClosed, r.State())
	assert.ErrorIs(t, r.Connect(), ErrClosed)
	r.Close()
}
