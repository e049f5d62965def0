// internal/app/system/workers/auditretention.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/findxvision/casewatch/internal/app/store/audit"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// AuditRetention is a background worker that deletes audit rows past
// the retention horizon.
type AuditRetention struct {
	store     *audit.Store
	recorder  *auditlog.Recorder
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewAuditRetention creates the retention worker.
//
// Parameters:
//   - store: the audit store
//   - recorder: records the purge itself on the trail
//   - interval: how often to run (e.g., 24 hours)
//   - retention: how long rows are kept (e.g., 7 years)
func NewAuditRetention(store *audit.Store, recorder *auditlog.Recorder, logger *zap.Logger, interval, retention time.Duration) *AuditRetention {
	return &AuditRetention{
		store:     store,
		recorder:  recorder,
		log:       logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background purge loop.
func (w *AuditRetention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit retention worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AuditRetention) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("audit retention worker stopped")
}

func (w *AuditRetention) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Purge()
		}
	}
}

// Purge deletes rows past the horizon. Exported so tests can drive
// it without the ticker.
func (w *AuditRetention) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	cutoff := time.Now().Add(-w.retention)
	count, err := w.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.log.Error("audit retention purge failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("purged expired audit rows", zap.Int64("count", count))
		w.recorder.System(ctx, audit.ActionRetentionPurge, map[string]any{
			"deleted": count,
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}
}
