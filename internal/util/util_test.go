package util

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestRetrierSucceedsMidway(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	r := Retrier{Attempts: 5, Base: time.Millisecond}
	err := r.Do(context.Background(), "fetch", func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Do called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetrierAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 4

	r := Retrier{Attempts: maxAttempts, Base: time.Millisecond}
	err := r.Do(context.Background(), "fetch", func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Do returned nil, want last error")
	}
	if attempts != maxAttempts {
		t.Errorf("Do called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetrierZeroValueAttempts(t *testing.T) {
	attempts := 0

	r := Retrier{Base: time.Millisecond}
	_ = r.Do(context.Background(), "fetch", func() error {
		attempts++
		return errors.New("always failing")
	})

	if attempts != defaultRetryAttempts {
		t.Errorf("zero-value Retrier made %d attempts, want %d", attempts, defaultRetryAttempts)
	}
}

func TestRetrierRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Retrier{Attempts: 5, Base: time.Hour}
	err := r.Do(ctx, "fetch", func() error {
		return errors.New("always failing")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do err = %v, want context.Canceled", err)
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3) // one per minute, three tokens up front

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d returned error: %v", i, err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("burst of 3 blocked for %v", time.Since(start))
	}
}

func TestRateLimiterThrottlesAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 1) // one per minute
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("initial Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want context.DeadlineExceeded", err)
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := t.TempDir() + "/test.log"
	log, err := NewLogger("debug", "json", path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("hello", "k", "v")

	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("log file empty or missing: %v", err)
	}
}
