package throttle

import (
	"context"
	"testing"
	"time"
)

func TestNilLimiterDoesNotBlock(t *testing.T) {
	l := New(0)
	if l != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
}

func TestNilLimiterHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var l *Limiter
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestLimiterPaces(t *testing.T) {
	l := New(20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	// burst of one: the 2nd and 3rd calls wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected pacing, calls took %v", elapsed)
	}
}

func TestLimiterCancelled(t *testing.T) {
	l := New(0.001)
	_ = l.Wait(context.Background()) // drain the burst
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected error when the wait exceeds the deadline")
	}
}
