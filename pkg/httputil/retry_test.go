package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastStrategy keeps test runtime negligible.
func fastStrategy(retries int) Strategy {
	return Strategy{
		MaxRetries: retries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   8 * time.Millisecond,
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	base := errors.New("network down")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the cause")
	}

	if IsRetryable(errors.New("terminal")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry_SuccessFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastStrategy(3), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Retry() unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastStrategy(3), "op", func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("connection refused"))
		}
		return nil
	})
	if err != nil {
		t.Errorf("Retry() unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
}

func TestRetry_TerminalNotRetried(t *testing.T) {
	terminal := errors.New("404 not found")
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), Strategy{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}, "op", func() error {
		calls++
		return terminal
	})
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if err != terminal {
		t.Errorf("Retry() = %v, want the terminal error unchanged", err)
	}
	// No backoff should have been incurred for a terminal failure.
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("terminal failure incurred backoff delay: %s", elapsed)
	}
}

func TestRetry_Exhaustion(t *testing.T) {
	calls := 0
	strategy := fastStrategy(3)
	err := Retry(context.Background(), strategy, "fetch servers", func() error {
		calls++
		return Retryable(errors.New("503 unavailable"))
	})

	// max_retries + 1 total tries
	if calls != 4 {
		t.Errorf("operation called %d times, want 4", calls)
	}

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("Retry() error type = %T, want *ExhaustedError", err)
	}
	if ex.Attempts != 4 {
		t.Errorf("ExhaustedError.Attempts = %d, want 4", ex.Attempts)
	}
	if ex.Op != "fetch servers" {
		t.Errorf("ExhaustedError.Op = %q, want %q", ex.Op, "fetch servers")
	}
	if ex.Err == nil || ex.Err.Error() != "503 unavailable" {
		t.Errorf("ExhaustedError.Err = %v, want last underlying failure", ex.Err)
	}
}

func TestRetry_ZeroRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastStrategy(0), "op", func() error {
		calls++
		return Retryable(errors.New("boom"))
	})
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("Retry() error type = %T, want *ExhaustedError", err)
	}
	if ex.Attempts != 1 {
		t.Errorf("ExhaustedError.Attempts = %d, want 1", ex.Attempts)
	}
}

func TestRetry_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	strategy := Strategy{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, strategy, "op", func() error {
			calls++
			return Retryable(errors.New("flaky"))
		})
	}()

	// Give the first attempt time to fail and enter backoff, then cancel.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Retry() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retry() did not abort backoff promptly on cancellation")
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}

func TestStrategy_Delay(t *testing.T) {
	s := Strategy{MaxRetries: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second}, // capped
		{9, time.Second}, // stays capped, no overflow
	}

	for _, tt := range tests {
		if got := s.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}

	// Delays are non-decreasing across successive attempts.
	prev := time.Duration(0)
	for attempt := 0; attempt < 20; attempt++ {
		d := s.Delay(attempt)
		if d < prev {
			t.Errorf("Delay(%d) = %s decreased from %s", attempt, d, prev)
		}
		if d > s.MaxDelay {
			t.Errorf("Delay(%d) = %s exceeds cap %s", attempt, d, s.MaxDelay)
		}
		prev = d
	}
}

func TestRetry_LogfDoesNotMaskError(t *testing.T) {
	var lines []string
	strategy := fastStrategy(1)
	strategy.Logf = func(format string, args ...any) {
		lines = append(lines, format)
	}

	err := Retry(context.Background(), strategy, "op", func() error {
		return Retryable(errors.New("fail"))
	})
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("Retry() error type = %T, want *ExhaustedError", err)
	}
	if len(lines) != 2 {
		t.Errorf("expected one log line per failed attempt, got %d", len(lines))
	}
}
