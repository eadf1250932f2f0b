package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"go.uber.org/zap"
)

const defaultExpirerInterval = 1 * time.Hour

// DocumentExpirer deletes memory documents older than the retention window.
type DocumentExpirer struct {
	store     domain.DocumentStore
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewDocumentExpirer(s domain.DocumentStore, retention time.Duration, logger *zap.Logger) *DocumentExpirer {
	return &DocumentExpirer{
		store:     s,
		retention: retention,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		interval:  defaultExpirerInterval,
		stopCh:    make(chan struct{}),
	}
}

func (e *DocumentExpirer) SetInterval(d time.Duration) {
	e.interval = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (e *DocumentExpirer) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		e.logger.Info("document expirer started",
			zap.Duration("interval", e.interval),
			zap.Duration("retention", e.retention),
		)

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				e.run(ctx)
				cancel()
			case <-e.stopCh:
				e.logger.Info("document expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (e *DocumentExpirer) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

func (e *DocumentExpirer) run(ctx context.Context) int64 {
	cutoff := e.now().Add(-e.retention)
	deleted, err := e.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		e.logger.Error("failed to delete expired documents", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		e.logger.Info("deleted documents past retention",
			zap.Time("cutoff", cutoff),
			zap.Int64("count", deleted),
		)
	}
	return deleted
}
