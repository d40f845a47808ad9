package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay bounds the request rate of typed searches.
const DefaultDelay = 300 * time.Millisecond

// Debouncer coalesces bursts of calls per key. Each call waits Delay and then
// learns whether it is still the newest call for its key; only the newest one
// should do the work.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, latest: make(map[string]uint64)}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Wait blocks for the debounce delay. It returns true when no newer call for
// key arrived in the meantime, and ctx.Err() if ctx ends first.
func (d *Debouncer) Wait(ctx context.Context, key string) (bool, error) {
	d.mu.Lock()
	d.seq++
	mine := d.seq
	d.latest[key] = mine
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		d.release(key, mine)
		return false, ctx.Err()
	case <-timer.C:
	}

	return d.release(key, mine), nil
}

// release reports whether mine is still the newest call and forgets the key if so.
func (d *Debouncer) release(key string, mine uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[key] != mine {
		return false
	}
	delete(d.latest, key)
	return true
}
