package progress

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Reporter presents events. Errors are advisory: callers must not abort a wipe on them.
type Reporter interface {
	Report(ev Event) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ev Event) error

func (f ReporterFunc) Report(ev Event) error { return f(ev) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) error { return nil })

// JSON пишет одно событие на строку
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

func (j *JSON) Report(ev Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(ev)
}

const (
	// DefaultInterval минимальный интервал между событиями progress
	DefaultInterval = 100 * time.Millisecond
	// FastInterval интервал в быстром режиме
	FastInterval = 500 * time.Millisecond
)

// IntervalFor returns the progress interval for the performance mode.
func IntervalFor(fast bool) time.Duration {
	if fast {
		return FastInterval
	}
	return DefaultInterval
}

// Throttle решает, пора ли отправлять progress, и считает скорость с прошлого события
type Throttle struct {
	interval  time.Duration
	now       func() time.Time
	lastTime  time.Time
	lastBytes uint64
}

func NewThrottle(interval time.Duration) *Throttle {
	return NewThrottleWithClock(interval, time.Now)
}

// NewThrottleWithClock is NewThrottle with an injectable clock.
func NewThrottleWithClock(interval time.Duration, now func() time.Time) *Throttle {
	return &Throttle{interval: interval, now: now, lastTime: now()}
}

// Reset restarts the window at the given byte count.
func (t *Throttle) Reset(bytes uint64) {
	t.lastTime = t.now()
	t.lastBytes = bytes
}

// Tick reports whether an event is due for the cumulative byte count and,
// if so, the throughput since the previous emitted event.
func (t *Throttle) Tick(bytes uint64) (float64, bool) {
	now := t.now()
	elapsed := now.Sub(t.lastTime)
	if elapsed < t.interval {
		return 0, false
	}

	var bps float64
	if secs := elapsed.Seconds(); secs > 0 && bytes >= t.lastBytes {
		bps = float64(bytes-t.lastBytes) / secs
	}
	t.lastTime = now
	t.lastBytes = bytes
	return bps, true
}
