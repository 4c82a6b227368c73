package timelock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_negativeDuration(t *testing.T) {
	l, err := New(-time.Millisecond)
	assert.Nil(t, l)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNew_zeroDuration(t *testing.T) {
	l, err := New(0)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, time.Duration(0), l.LockDuration())
}

func TestLock_mutualExclusion(t *testing.T) {
	base := time.Unix(0, 0)
	old := timeNow
	defer func() { timeNow = old }()
	var now atomic.Int64
	timeNow = func() time.Time { return base.Add(time.Duration(now.Load())) }

	l, err := New(10 * time.Millisecond)
	require.NoError(t, err)

	assert.True(t, l.Obtain())
	assert.False(t, l.Obtain())

	now.Store(int64(9 * time.Millisecond))
	assert.False(t, l.Obtain())

	now.Store(int64(10 * time.Millisecond))
	assert.True(t, l.Obtain())
	assert.False(t, l.Obtain())
}

func TestLock_release(t *testing.T) {
	l, err := New(time.Hour)
	require.NoError(t, err)

	require.True(t, l.Obtain())
	require.False(t, l.Obtain())

	l.Release()
	assert.True(t, l.Obtain())
}

func TestLock_concurrentObtain_exactlyOneWinnerPerCycle(t *testing.T) {
	l, err := New(20 * time.Millisecond)
	require.NoError(t, err)

	const callers = 32
	var wins atomic.Int64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if l.Obtain() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
}

func TestLock_realTimeLowerBound(t *testing.T) {
	l, err := New(15 * time.Millisecond)
	require.NoError(t, err)

	require.True(t, l.Obtain())

	start := time.Now()
	for !l.Obtain() {
		if time.Since(start) > time.Second {
			t.Fatal("lock never became available again")
		}
		time.Sleep(time.Millisecond)
	}
	elapsed := time.Since(start)

	assert.InDelta(t, 15*time.Millisecond, elapsed, float64(5*time.Millisecond))
}
