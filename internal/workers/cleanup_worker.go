package workers

import (
	"context"
	"time"

	"brainbin/internal/logger"
	"brainbin/internal/repositories"
)

// CleanupWorker periodically trims expired refresh tokens.
type CleanupWorker struct {
	users    repositories.UserRepository
	interval time.Duration
}

func NewCleanupWorker(users repositories.UserRepository) *CleanupWorker {
	return &CleanupWorker{
		users:    users,
		interval: time.Hour,
	}
}

// Start runs the cleanup loop until the context is cancelled.
func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.GetLogger().Info("Cleanup worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.run()
		}
	}
}

func (w *CleanupWorker) run() {
	removed, err := w.users.DeleteExpiredRefreshTokens(time.Now())
	logger.WorkerLog("cleanup", "expired refresh tokens", err)
	if err == nil && removed > 0 {
		logger.GetLogger().Info("Removed expired refresh tokens", "count", removed)
	}
}
