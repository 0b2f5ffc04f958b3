package conflicts

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultDebounce    = time.Second
	RecurrenceDebounce = 500 * time.Millisecond
)

// LiveChecker debounces checks triggered while a form is being edited.
// Each Trigger restarts the timer. When it fires, the check is skipped if
// another check is still running or the input is unchanged since the last
// one that ran.
type LiveChecker struct {
	ctx   context.Context
	delay time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	inFlight bool
	lastKey  string
	nextKey  string
	next     func(ctx context.Context)
	stopped  bool
}

func NewLiveChecker(ctx context.Context, delay time.Duration) *LiveChecker {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &LiveChecker{ctx: ctx, delay: delay}
}

// Trigger schedules run after the debounce delay. key identifies the input;
// use InputKey to derive one.
func (l *LiveChecker) Trigger(key string, run func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}
	l.nextKey = key
	l.next = run
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.delay, l.fire)
}

func (l *LiveChecker) fire() {
	l.mu.Lock()
	if l.stopped || l.inFlight || l.next == nil || (l.nextKey != "" && l.nextKey == l.lastKey) {
		l.mu.Unlock()
		return
	}
	l.inFlight = true
	l.lastKey = l.nextKey
	run := l.next
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inFlight = false
		l.mu.Unlock()
	}()
	run(l.ctx)
}

// Stop cancels any pending check. A check already running completes.
func (l *LiveChecker) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	if l.timer != nil {
		l.timer.Stop()
	}
}

// InputKey hashes any JSON-encodable input into a trigger key.
func InputKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
