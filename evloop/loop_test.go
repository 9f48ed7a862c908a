package evloop

import (
	"sync"
	"testing"
	"time"
)

func TestSubmitRunsOnLoopGoroutine(t *testing.T) {
	l := New()
	defer l.Stop()

	done := make(chan struct{})
	if err := l.Submit(func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit'd task never ran")
	}
}

func TestSubmitAfterStopFails(t *testing.T) {
	l := New()
	l.Stop()
	l.Wait()
	if err := l.Submit(func() {}); err != ErrLoopClosed {
		t.Fatalf("expected ErrLoopClosed, got %v", err)
	}
}

func TestTimerFires(t *testing.T) {
	l := New()
	defer l.Stop()

	done := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerStop(t *testing.T) {
	l := New()
	defer l.Stop()

	fired := make(chan struct{}, 1)
	tm := l.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })
	if !tm.Stop() {
		t.Fatal("Stop returned false for a timer that had not fired")
	}
	select {
	case <-fired:
		t.Fatal("stopped timer fired anyway")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWakerCoalescesBursts(t *testing.T) {
	l := New()
	defer l.Stop()

	var mu sync.Mutex
	count := 0
	woke := make(chan struct{}, 10)
	w := l.NewWaker(func() {
		mu.Lock()
		count++
		mu.Unlock()
		woke <- struct{}{}
	})

	for i := 0; i < 5; i++ {
		w.Wake()
	}

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waker never fired")
	}
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	got := count
	mu.Unlock()
	if got < 1 || got > 2 {
		t.Fatalf("expected 1-2 coalesced deliveries for 5 rapid wakes, got %d", got)
	}
}

func TestHandleTwoPhaseTeardown(t *testing.T) {
	l := New()
	defer l.Stop()

	var closedCalled, doneCalled bool
	h := l.NewHandle(func() { closedCalled = true })
	h.Stop()
	if !h.Stopped() {
		t.Fatal("Stopped() false after Stop()")
	}

	done := make(chan struct{})
	h.CloseWithCallback(func() {
		doneCalled = true
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CloseWithCallback never completed")
	}
	if !closedCalled || !doneCalled {
		t.Fatal("expected both closeFn and done to run")
	}
}
