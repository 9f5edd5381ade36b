package node

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestControlTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewClockControlTimer(clock)
	go timer.Run(0)
	defer timer.Shutdown()

	require.False(t, timer.Set())

	require.True(t, timer.Reset(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	require.Eventually(t, timer.Set, time.Second, time.Millisecond)

	clock.Advance(time.Second)

	select {
	case <-timer.tickCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for tick")
	}
	require.Eventually(t, func() bool { return !timer.Set() }, time.Second, time.Millisecond)

	require.True(t, timer.Reset(time.Second))
	require.Eventually(t, timer.Set, time.Second, time.Millisecond)
	timer.Stop()
	require.Eventually(t, func() bool { return !timer.Set() }, time.Second, time.Millisecond)
}

func TestControlTimerShutdown(t *testing.T) {
	timer := NewClockControlTimer(clockwork.NewFakeClock())
	done := make(chan struct{})
	go func() {
		timer.Run(0)
		close(done)
	}()

	timer.Shutdown()
	<-done

	require.False(t, timer.Reset(time.Second))
}
