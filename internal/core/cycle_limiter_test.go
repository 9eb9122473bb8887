package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCycleLimiter_AcquireRelease(t *testing.T) {
	limiter := NewCycleLimiter(time.Second)

	if limiter.Busy() {
		t.Error("new limiter should not be busy")
	}

	ctx := context.Background()
	if err := limiter.Acquire(ctx, "cycle-1"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	st := limiter.Status()
	if !st.Busy {
		t.Error("Status().Busy = false after Acquire, want true")
	}
	if st.CycleID != "cycle-1" {
		t.Errorf("Status().CycleID = %q, want %q", st.CycleID, "cycle-1")
	}
	if st.Started.IsZero() {
		t.Error("Status().Started is zero after Acquire")
	}

	limiter.Release()

	st = limiter.Status()
	if st.Busy || st.CycleID != "" {
		t.Errorf("Status() after Release = %+v, want idle", st)
	}
}

func TestCycleLimiter_BusyAfterWait(t *testing.T) {
	limiter := NewCycleLimiter(100 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx, "first"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx, "second")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCycleBusy) {
		t.Errorf("second Acquire = %v, want ErrCycleBusy", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("gave up too fast: %v", elapsed)
	}
}

func TestCycleLimiter_TryAcquire(t *testing.T) {
	limiter := NewCycleLimiter(time.Second)

	if !limiter.TryAcquire("a") {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire("b") {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}

	limiter.Release()

	if !limiter.TryAcquire("c") {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestCycleLimiter_ContextCancellation(t *testing.T) {
	limiter := NewCycleLimiter(5 * time.Second)

	if err := limiter.Acquire(context.Background(), "holder"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(cancelCtx, "waiter")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestCycleLimiter_Serializes(t *testing.T) {
	limiter := NewCycleLimiter(5 * time.Second)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		running  int
		observed int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background(), "worker"); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			running++
			if running > observed {
				observed = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if observed != 1 {
		t.Errorf("max concurrent cycles = %d, want 1", observed)
	}
}

func TestCycleLimiter_WaitForDrain(t *testing.T) {
	limiter := NewCycleLimiter(time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain on idle limiter: %v", err)
	}

	if !limiter.TryAcquire("slow") {
		t.Fatal("TryAcquire failed")
	}
	go func() {
		time.Sleep(150 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain = %v, want nil", err)
	}
}
