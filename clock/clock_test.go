package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	if err := c.Sleep(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Since(start); got != 3*time.Second {
		t.Errorf("expected 3s elapsed, got %v", got)
	}

	c.Advance(500 * time.Millisecond)
	if got := c.Now(); !got.Equal(start.Add(3500 * time.Millisecond)) {
		t.Errorf("unexpected now: %v", got)
	}
}

func TestFakeSleepCancelled(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := c.Since(time.Unix(0, 0)); got != 0 {
		t.Errorf("clock should not advance on cancelled sleep, got %v", got)
	}
}

func TestRealSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Real{}.Sleep(ctx, time.Minute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("sleep did not return on cancellation")
	}
}
