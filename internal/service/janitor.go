package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
)

// LockoutJanitor periodically removes expired lockout counter rows. The
// counters are already ignored once their window closes; this only keeps
// the table from growing without bound.
type LockoutJanitor struct {
	lockouts repository.LockoutRepositoryInterface
	logger   *slog.Logger
	interval time.Duration
}

func NewLockoutJanitor(lockouts repository.LockoutRepositoryInterface, logger *slog.Logger, interval time.Duration) *LockoutJanitor {
	return &LockoutJanitor{
		lockouts: lockouts,
		logger:   logger,
		interval: interval,
	}
}

// Run starts the janitor loop.
func (j *LockoutJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("lockout janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("lockout janitor stopped")
			return
		case <-ticker.C:
			removed, err := j.lockouts.CleanupExpired(ctx)
			if err != nil {
				j.logger.Error("failed to clean up expired lockout counters", "error", err)
				continue
			}
			if removed > 0 {
				j.logger.Debug("expired lockout counters removed", "count", removed)
			}
		}
	}
}
