package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSemaphoreCapacity(t *testing.T) {
	s := NewSemaphore(2)
	ctx := context.Background()

	if err := s.Acquire(ctx); err != nil {
		t.Fatalf("Acquire 1: %v", err)
	}
	if err := s.Acquire(ctx); err != nil {
		t.Fatalf("Acquire 2: %v", err)
	}
	if s.InUse() != 2 {
		t.Errorf("InUse = %d, want 2", s.InUse())
	}
	if s.TryAcquire() {
		t.Error("TryAcquire succeeded at capacity")
	}
	if s.DroppedCount() != 1 {
		t.Errorf("DroppedCount = %d, want 1", s.DroppedCount())
	}

	s.Release()
	if !s.TryAcquire() {
		t.Error("TryAcquire failed after Release")
	}
}

func TestSemaphoreAcquireCanceled(t *testing.T) {
	s := NewSemaphore(1)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestSemaphoreAcquirePreCanceled(t *testing.T) {
	s := NewSemaphore(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want Canceled", err)
	}
	if s.InUse() != 0 {
		t.Error("canceled Acquire took a slot")
	}
}

func TestSemaphoreDefaultCapacity(t *testing.T) {
	s := NewSemaphore(0)
	for i := 0; i < 16; i++ {
		if !s.TryAcquire() {
			t.Fatalf("slot %d refused below default capacity", i)
		}
	}
	if s.TryAcquire() {
		t.Error("exceeded default capacity")
	}
}

func TestSemaphoreReleaseWithoutAcquire(t *testing.T) {
	s := NewSemaphore(1)
	s.Release()
	if s.InUse() != 0 {
		t.Errorf("InUse = %d after spurious release", s.InUse())
	}
}
