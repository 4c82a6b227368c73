package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuto_initiallySignalledConsumedOnce(t *testing.T) {
	g := NewAuto(true)
	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
}

func TestAuto_setWakesExactlyOneWaiter(t *testing.T) {
	g := NewAuto(false)

	const n = 8
	var released atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if g.Wait(context.Background()) == nil {
				released.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	g.Set()
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, int32(1), released.Load())

	// drain the rest so the goroutines don't leak past the test.
	for i := 0; i < n-1; i++ {
		g.Set()
	}
	wg.Wait()
	require.Equal(t, int32(n), released.Load())
}

func TestAuto_setWithNoWaitersBanksPermit(t *testing.T) {
	g := NewAuto(false)
	g.Set()
	g.Set() // second Set while a permit is already banked is a no-op

	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
}

func TestAuto_oneWaiterManySets_onePerSet(t *testing.T) {
	g := NewAuto(false)
	const n = 5

	for i := 0; i < n; i++ {
		released := make(chan struct{})
		go func() {
			require.NoError(t, g.Wait(context.Background()))
			close(released)
		}()
		time.Sleep(10 * time.Millisecond)
		g.Set()
		select {
		case <-released:
		case <-time.After(time.Second):
			t.Fatal("waiter never released")
		}
	}
}

func TestAuto_reset(t *testing.T) {
	g := NewAuto(false)
	g.Set()
	g.Reset()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
}
