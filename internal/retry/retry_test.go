package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries: maxRetries,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Timeout:    1 * time.Second,
	}
}

func TestWithRetrySuccessAfterRetries(t *testing.T) {
	callCount := 0
	operation := func(ctx context.Context) (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary failure")
		}
		return "OK", nil
	}

	result, err := WithRetry(context.Background(), fastConfig(3), operation)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "OK" {
		t.Errorf("Expected 'OK', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetryFailureAfterMaxRetries(t *testing.T) {
	failure := errors.New("reload endpoint down")
	callCount := 0
	operation := func(ctx context.Context) (int, error) {
		callCount++
		return 0, failure
	}

	_, err := WithRetry(context.Background(), fastConfig(2), operation)
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped failure, got %v", err)
	}
	if callCount != 3 { // MaxRetries + 1
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetryPermanentErrorStopsImmediately(t *testing.T) {
	failure := errors.New("unauthorized")
	callCount := 0
	operation := func(ctx context.Context) (string, error) {
		callCount++
		return "", Permanent(failure)
	}

	_, err := WithRetry(context.Background(), fastConfig(5), operation)
	if err != failure {
		t.Errorf("Expected the unwrapped permanent error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetryInfiniteRetry(t *testing.T) {
	config := fastConfig(0)
	config.InfiniteRetry = true
	config.MaxDelay = 5 * time.Millisecond

	callCount := 0
	operation := func(ctx context.Context) (string, error) {
		callCount++
		if callCount < 6 {
			return "", errors.New("sheets quota exceeded")
		}
		return "done", nil
	}

	result, err := WithRetry(context.Background(), config, operation)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "done" || callCount != 6 {
		t.Errorf("Expected 'done' after 6 calls, got %q after %d", result, callCount)
	}
}

func TestWithRetryContextCancellation(t *testing.T) {
	config := fastConfig(5)
	config.BaseDelay = 50 * time.Millisecond
	config.MaxDelay = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	operation := func(ctx context.Context) (string, error) {
		callCount++
		if callCount == 2 {
			cancel()
		}
		return "", errors.New("failure")
	}

	_, err := WithRetry(ctx, config, operation)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if callCount > 3 {
		t.Errorf("Expected at most 3 calls due to cancellation, got %d", callCount)
	}
}

func TestWithRetryContextTimeout(t *testing.T) {
	config := fastConfig(10)
	config.BaseDelay = 50 * time.Millisecond
	config.MaxDelay = 200 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	operation := func(ctx context.Context) (string, error) {
		return "", errors.New("failure")
	}

	start := time.Now()
	_, err := WithRetry(ctx, config, operation)
	duration := time.Since(start)

	if err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if duration > 150*time.Millisecond {
		t.Errorf("Expected operation to timeout around 100ms, took %v", duration)
	}
}

func TestCalculateBackoffDelay(t *testing.T) {
	baseDelay := 10 * time.Millisecond
	maxDelay := 100 * time.Millisecond

	tests := []struct {
		attempt     int
		minDelay    time.Duration
		maxExpected time.Duration
	}{
		{0, 5 * time.Millisecond, 15 * time.Millisecond},
		{1, 10 * time.Millisecond, 30 * time.Millisecond},
		{2, 20 * time.Millisecond, 60 * time.Millisecond},
		{3, 40 * time.Millisecond, 100 * time.Millisecond},
		{5, 50 * time.Millisecond, 100 * time.Millisecond},
		{100, 50 * time.Millisecond, 100 * time.Millisecond}, // must not overflow
	}

	for _, test := range tests {
		for i := 0; i < 10; i++ {
			result := calculateBackoffDelay(test.attempt, baseDelay, maxDelay)
			if result < test.minDelay || result > test.maxExpected {
				t.Errorf("calculateBackoffDelay(%d, %v, %v) = %v, expected between %v and %v",
					test.attempt, baseDelay, maxDelay, result, test.minDelay, test.maxExpected)
			}
		}
	}
}
