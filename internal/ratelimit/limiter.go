package ratelimit

import (
	"sync"
	"time"
)

// Limiter bounds admission attempts per source identity using a sliding
// window. State is in-memory only: this is advisory containment, not a
// security boundary, and does not survive restarts.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a limiter admitting at most limit attempts per identity within
// window, and starts the background sweep that evicts identities whose whole
// window has expired. Close must be called to stop the sweeper.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records an attempt for identity at now and reports whether it is
// admitted. On denial it returns the remaining time until the oldest
// attempt leaves the window, so callers can advertise a deterministic
// retry delay. Denied attempts are not recorded.
func (l *Limiter) Allow(identity string, now time.Time) (bool, time.Duration) {
	e := l.entryFor(identity)

	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := e.stamps[:0]
	for _, stamp := range e.stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	e.stamps = kept

	if len(e.stamps) >= l.limit {
		retryAfter := e.stamps[0].Add(l.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}

	e.stamps = append(e.stamps, now)
	return true, 0
}

// Close stops the background sweeper.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) entryFor(identity string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok {
		e = &entry{}
		l.entries[identity] = e
	}
	return e
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

// sweep drops identities with no attempt inside the current window, keeping
// the map bounded by the number of recently active identities.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for identity, e := range l.entries {
		e.mu.Lock()
		expired := len(e.stamps) == 0 || !e.stamps[len(e.stamps)-1].After(cutoff)
		e.mu.Unlock()
		if expired {
			delete(l.entries, identity)
		}
	}
}

// Len reports the number of tracked identities.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
