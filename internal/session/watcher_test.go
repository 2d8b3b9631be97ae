package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeSource is a TokenSource whose value can be swapped mid-test.
type fakeSource struct {
	mu    sync.Mutex
	token string
	err   error
}

func (f *fakeSource) set(token string, err error) {
	f.mu.Lock()
	f.token = token
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSource) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.err
}

// fakeActivator records Activate/Deactivate calls.
type fakeActivator struct {
	mu          sync.Mutex
	activates   int
	deactivates int
}

func (f *fakeActivator) Activate() {
	f.mu.Lock()
	f.activates++
	f.mu.Unlock()
}

func (f *fakeActivator) Deactivate() {
	f.mu.Lock()
	f.deactivates++
	f.mu.Unlock()
}

func (f *fakeActivator) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activates, f.deactivates
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcher_ActivatesOnLogin(t *testing.T) {
	src := &fakeSource{}
	target := &fakeActivator{}
	w := NewWatcher(src, target, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Logged out: no transitions.
	time.Sleep(30 * time.Millisecond)
	if a, _ := target.counts(); a != 0 {
		t.Fatalf("activates = %d before login, want 0", a)
	}

	// Login: exactly one activation, repeated polls do not re-activate.
	src.set("abc123", nil)
	waitFor(t, time.Second, func() bool {
		a, _ := target.counts()
		return a == 1
	})
	time.Sleep(50 * time.Millisecond)
	if a, _ := target.counts(); a != 1 {
		t.Errorf("activates = %d after steady login, want 1", a)
	}
}

func TestWatcher_DeactivatesOnLogout(t *testing.T) {
	src := &fakeSource{token: "abc123"}
	target := &fakeActivator{}
	w := NewWatcher(src, target, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, time.Second, func() bool {
		a, _ := target.counts()
		return a == 1
	})

	src.set("", nil)
	waitFor(t, time.Second, func() bool {
		_, d := target.counts()
		return d == 1
	})
}

func TestWatcher_ErrorKeepsState(t *testing.T) {
	src := &fakeSource{token: "abc123"}
	target := &fakeActivator{}
	w := NewWatcher(src, target, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, time.Second, func() bool {
		a, _ := target.counts()
		return a == 1
	})

	// A flapping session store must not deactivate the channel.
	src.set("", context.DeadlineExceeded)
	time.Sleep(50 * time.Millisecond)
	if _, d := target.counts(); d != 0 {
		t.Errorf("deactivates = %d during source errors, want 0", d)
	}
}

func TestWatcher_DeactivatesOnShutdown(t *testing.T) {
	src := &fakeSource{token: "abc123"}
	target := &fakeActivator{}
	w := NewWatcher(src, target, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitFor(t, time.Second, func() bool {
		a, _ := target.counts()
		return a == 1
	})

	cancel()
	<-done
	if _, d := target.counts(); d != 1 {
		t.Errorf("deactivates = %d after shutdown, want 1", d)
	}
}
