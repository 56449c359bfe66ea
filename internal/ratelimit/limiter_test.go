package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAllowAdmitsUpToLimitWithinWindow(t *testing.T) {
	t.Parallel()

	l := New(3, time.Minute)
	defer l.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("10.0.0.1", base.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("attempt %d should be admitted", i+1)
		}
	}

	ok, retryAfter := l.Allow("10.0.0.1", base.Add(3*time.Second))
	if ok {
		t.Fatal("fourth attempt within window should be denied")
	}
	if want := 57 * time.Second; retryAfter != want {
		t.Fatalf("expected retry after %v, got %v", want, retryAfter)
	}
}

func TestAllowReadmitsAfterWindowExpires(t *testing.T) {
	t.Parallel()

	l := New(3, time.Minute)
	defer l.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		l.Allow("10.0.0.1", base)
	}
	if ok, _ := l.Allow("10.0.0.1", base); ok {
		t.Fatal("expected denial while window is full")
	}

	ok, _ := l.Allow("10.0.0.1", base.Add(time.Minute))
	if !ok {
		t.Fatal("expected admission once the first attempt left the window")
	}
}

func TestAllowDeniedAttemptsAreNotRecorded(t *testing.T) {
	t.Parallel()

	l := New(1, time.Minute)
	defer l.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Allow("10.0.0.1", base)
	for i := 0; i < 10; i++ {
		l.Allow("10.0.0.1", base.Add(time.Duration(i)*time.Second))
	}

	// Only the first admitted attempt occupies the window, so the identity
	// recovers exactly one window after it.
	ok, _ := l.Allow("10.0.0.1", base.Add(time.Minute+time.Second))
	if !ok {
		t.Fatal("denied attempts must not extend the window")
	}
}

func TestAllowIdentitiesAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(1, time.Minute)
	defer l.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if ok, _ := l.Allow("10.0.0.1", now); !ok {
		t.Fatal("first identity should be admitted")
	}
	if ok, _ := l.Allow("10.0.0.1", now); ok {
		t.Fatal("first identity should now be denied")
	}
	if ok, _ := l.Allow("10.0.0.2", now); !ok {
		t.Fatal("second identity must not be affected by the first")
	}
}

func TestSweepEvictsExpiredIdentities(t *testing.T) {
	t.Parallel()

	l := New(5, time.Minute)
	defer l.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Allow("10.0.0.1", base)
	l.Allow("10.0.0.2", base.Add(30*time.Second))

	l.sweep(base.Add(61 * time.Second))
	if got := l.Len(); got != 1 {
		t.Fatalf("expected 1 tracked identity after sweep, got %d", got)
	}

	l.sweep(base.Add(2 * time.Minute))
	if got := l.Len(); got != 0 {
		t.Fatalf("expected 0 tracked identities after sweep, got %d", got)
	}
}

func TestAllowConcurrentSingleIdentity(t *testing.T) {
	t.Parallel()

	const limit = 50
	l := New(limit, time.Minute)
	defer l.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow("10.0.0.1", now)
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}
