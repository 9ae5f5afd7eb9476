package util

import (
	"context"
	"testing"
	"time"
)

func TestTimerElapsed(t *testing.T) {
	var zero Timer
	if zero.ElapsedMs() != 0 {
		t.Fatalf("expected zero timer to report 0")
	}
	timer := StartTimer()
	time.Sleep(2 * time.Millisecond)
	if timer.ElapsedMs() < 1 {
		t.Fatalf("expected elapsed >= 1ms got %d", timer.ElapsedMs())
	}
	if timer.Elapsed() <= 0 {
		t.Fatalf("expected positive elapsed duration")
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("expected abc got %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id got %q", got)
	}
}
