package conflicts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveChecker_DebouncesBursts(t *testing.T) {
	l := NewLiveChecker(context.Background(), 20*time.Millisecond)
	defer l.Stop()

	var runs atomic.Int32
	var mu sync.Mutex
	var last string
	for _, key := range []string{"a", "b", "c"} {
		key := key
		l.Trigger(key, func(ctx context.Context) {
			runs.Add(1)
			mu.Lock()
			last = key
			mu.Unlock()
		})
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	mu.Lock()
	assert.Equal(t, "c", last)
	mu.Unlock()
}

func TestLiveChecker_SkipsUnchangedInput(t *testing.T) {
	l := NewLiveChecker(context.Background(), 5*time.Millisecond)
	defer l.Stop()

	var runs atomic.Int32
	run := func(ctx context.Context) { runs.Add(1) }

	l.Trigger("same", run)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	l.Trigger("same", run)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	l.Trigger("changed", run)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

func TestLiveChecker_SkipsWhileInFlight(t *testing.T) {
	l := NewLiveChecker(context.Background(), 5*time.Millisecond)
	defer l.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32

	l.Trigger("first", func(ctx context.Context) {
		runs.Add(1)
		close(started)
		<-release
	})
	<-started

	l.Trigger("second", func(ctx context.Context) { runs.Add(1) })
	time.Sleep(30 * time.Millisecond)
	close(release)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), runs.Load())
}

func TestLiveChecker_StopCancelsPending(t *testing.T) {
	l := NewLiveChecker(context.Background(), 20*time.Millisecond)

	var runs atomic.Int32
	l.Trigger("a", func(ctx context.Context) { runs.Add(1) })
	l.Stop()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(0), runs.Load())
}

func TestInputKey(t *testing.T) {
	a := validCandidate()
	b := validCandidate()
	assert.Equal(t, InputKey(a), InputKey(b))

	b.Location = "Studio Theatre"
	assert.NotEqual(t, InputKey(a), InputKey(b))
	assert.NotEmpty(t, InputKey(a))
}
