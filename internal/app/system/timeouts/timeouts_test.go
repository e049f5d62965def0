package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func resetDeadlines(t *testing.T) {
	t.Helper()
	mu.Lock()
	saved := make(map[string]time.Duration, len(deadline))
	for k, v := range deadline {
		saved[k] = v
	}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		for k, v := range saved {
			deadline[k] = v
		}
		mu.Unlock()
	})
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"ping", Ping(), 2 * time.Second},
		{"short", Short(), 5 * time.Second},
		{"medium", Medium(), 10 * time.Second},
		{"long", Long(), 30 * time.Second},
		{"batch", Batch(), time.Minute},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestConfigureFromEnv(t *testing.T) {
	resetDeadlines(t)

	t.Setenv("CASEWATCH_TIMEOUT_SHORT", "15s")
	t.Setenv("CASEWATCH_TIMEOUT_MEDIUM", "not-a-duration")
	t.Setenv("CASEWATCH_TIMEOUT_LONG", "-5s")

	if applied := ConfigureFromEnv(); applied != 1 {
		t.Errorf("applied overrides: got %d, want 1", applied)
	}
	if got := Short(); got != 15*time.Second {
		t.Errorf("short after override: got %v, want 15s", got)
	}
	// Invalid and non-positive values keep the defaults.
	if got := Medium(); got != 10*time.Second {
		t.Errorf("medium after invalid override: got %v, want 10s", got)
	}
	if got := Long(); got != 30*time.Second {
		t.Errorf("long after negative override: got %v, want 30s", got)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test op")
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("context has no deadline")
	}
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("context error: got %v, want deadline exceeded", ctx.Err())
	}
	// Cancel after expiry takes the logging path and must not panic.
	cancel()
}
