// internal/app/system/workers/retrysweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/findxvision/casewatch/internal/app/notify"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// RetrySweep is a background worker that re-attempts failed
// notification deliveries while they still have retry budget.
type RetrySweep struct {
	rows       *notifstore.Store
	dispatcher *notify.Dispatcher
	log        *zap.Logger
	interval   time.Duration
	batchSize  int64
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewRetrySweep creates the retry worker.
//
// Parameters:
//   - rows: the notifications store
//   - dispatcher: performs the actual re-delivery
//   - interval: how often to sweep (e.g., 1 minute)
func NewRetrySweep(rows *notifstore.Store, dispatcher *notify.Dispatcher, logger *zap.Logger, interval time.Duration) *RetrySweep {
	return &RetrySweep{
		rows:       rows,
		dispatcher: dispatcher,
		log:        logger,
		interval:   interval,
		batchSize:  100,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *RetrySweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification retry worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *RetrySweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification retry worker stopped")
}

func (w *RetrySweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep re-attempts one batch of retryable rows. Exported so tests
// can drive it without the ticker.
func (w *RetrySweep) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	rows, err := w.rows.FindRetryable(ctx, w.batchSize)
	if err != nil {
		w.log.Error("failed to load retryable notifications", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	for i := range rows {
		w.dispatcher.Redeliver(ctx, &rows[i])
	}
	w.log.Info("re-attempted failed notifications", zap.Int("count", len(rows)))
}
