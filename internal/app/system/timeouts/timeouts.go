// Package timeouts centralizes context deadlines for store, handler
// and worker I/O. Each operation picks a deadline class; values can be
// overridden at startup through CASEWATCH_TIMEOUT_* environment
// variables.
package timeouts

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Deadline classes. Ping covers connectivity checks, Short a single
// document read, Medium a moderate write or filtered list, Long
// multi-collection work such as image uploads and audit queries, and
// Batch the background sweeps and compliance operations.
const (
	classPing   = "ping"
	classShort  = "short"
	classMedium = "medium"
	classLong   = "long"
	classBatch  = "batch"
)

var (
	mu       sync.RWMutex
	deadline = map[string]time.Duration{
		classPing:   2 * time.Second,
		classShort:  5 * time.Second,
		classMedium: 10 * time.Second,
		classLong:   30 * time.Second,
		classBatch:  time.Minute,
	}
)

func get(class string) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return deadline[class]
}

// Ping is the deadline for connectivity checks.
func Ping() time.Duration { return get(classPing) }

// Short is the deadline for single-document reads.
func Short() time.Duration { return get(classShort) }

// Medium is the deadline for moderate writes and filtered lists.
func Medium() time.Duration { return get(classMedium) }

// Long is the deadline for multi-collection operations.
func Long() time.Duration { return get(classLong) }

// Batch is the deadline for background sweeps and bulk work.
func Batch() time.Duration { return get(classBatch) }

// ConfigureFromEnv applies CASEWATCH_TIMEOUT_PING, _SHORT, _MEDIUM,
// _LONG and _BATCH overrides (Go duration syntax, e.g. "15s"). It
// returns the number of overrides applied; unset or invalid values
// keep the defaults.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	applied := 0
	for class := range deadline {
		v := os.Getenv("CASEWATCH_TIMEOUT_" + strings.ToUpper(class))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			deadline[class] = d
			applied++
		}
	}
	return applied
}

// WithTimeout derives a deadline context whose cancel function logs a
// warning when the operation ran out of time.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
