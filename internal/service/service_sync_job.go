package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jk278/lifetracker/internal/logger"
)

type syncJob struct {
	manager SyncManager
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that runs manager.Start on a ticker. The job
// is idle until Start is called.
func NewSyncJob(manager SyncManager, log *logger.Logger) SyncJob {
	return &syncJob{manager: manager, logger: log}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that runs a round every interval. If
// interval is zero or negative it defaults to 5 minutes. Rounds go through
// the same entry point as a manual "sync now", so a tick that lands while a
// round (or an unresolved conflict set) holds the sync slot is simply
// skipped. The goroutine exits when ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		j.publishNextTick(interval)

		for {
			select {
			case <-jobCtx.Done():
				j.manager.SetNextSyncTime(nil)
				return
			case <-t.C:
				j.runOnce(jobCtx)
				j.publishNextTick(interval)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the
// job is not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) runOnce(ctx context.Context) {
	_, err := j.manager.Start(ctx)
	if err == nil || errors.Is(err, ErrAlreadySyncing) || errors.Is(err, ErrSyncDisabled) {
		return
	}
	j.logger.Err(err).Str("func", "syncJob.runOnce").Msg("background sync round failed")
}

func (j *syncJob) publishNextTick(interval time.Duration) {
	next := time.Now().Add(interval)
	j.manager.SetNextSyncTime(&next)
}
