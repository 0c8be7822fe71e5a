package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"salon_booking_backend/platform/logger"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.Nop(), "ping", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_WrapsLastError(t *testing.T) {
	sentinel := errors.New("refused")
	calls := 0
	err := Retry(context.Background(), logger.Nop(), "ping", 2, time.Millisecond, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := Retry(ctx, logger.Nop(), "ping", 3, time.Millisecond, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before first call, got err=%v called=%v", err, called)
	}
}

func TestRetry_RejectsZeroAttempts(t *testing.T) {
	if err := Retry(context.Background(), logger.Nop(), "ping", 0, time.Millisecond, func() error { return nil }); err == nil {
		t.Fatalf("expected error for zero attempts")
	}
}
