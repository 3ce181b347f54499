package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	p := NewPacer("test", time.Second)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait() took %v, expected no delay", elapsed)
	}
}

func TestPacer_SpacesCalls(t *testing.T) {
	interval := 60 * time.Millisecond
	p := NewPacer("test", interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	// Three calls need two full intervals between them.
	if elapsed := time.Since(start); elapsed < 2*interval-10*time.Millisecond {
		t.Errorf("three calls took %v, want at least %v", elapsed, 2*interval)
	}
}

func TestPacer_Disabled(t *testing.T) {
	for _, p := range []*Pacer{nil, NewPacer("off", 0), NewPacer("neg", -time.Second)} {
		start := time.Now()
		for i := 0; i < 10; i++ {
			if err := p.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("disabled pacer delayed calls by %v", elapsed)
		}
		if p.Interval() != 0 {
			t.Errorf("Interval() = %v, want 0", p.Interval())
		}
	}
}

func TestPacer_ContextCancelled(t *testing.T) {
	p := NewPacer("test", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	cancel()
	err := p.Wait(ctx)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPacer_Interval(t *testing.T) {
	p := NewPacer("test", 500*time.Millisecond)
	if got := p.Interval(); got != 500*time.Millisecond {
		t.Errorf("Interval() = %v, want 500ms", got)
	}
}

func TestPacer_DeadlineShorterThanInterval(t *testing.T) {
	p := NewPacer("test", time.Hour)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if ctx.Err() == nil {
		t.Error("Wait() returned before the context expired")
	}
}
