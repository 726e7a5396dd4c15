package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"observer-console.backend/pkg/logger"
)

// SessionExpirer moves stale pending sessions to expired
type SessionExpirer interface {
	ExpireStaleSessions(ctx context.Context, limit int) (int, error)
}

// VerificationExpiryJob periodically expires pending sessions past their expires_at
type VerificationExpiryJob struct {
	expirer   SessionExpirer
	interval  time.Duration
	batchSize int
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewVerificationExpiryJob(expirer SessionExpirer, interval time.Duration, batchSize int) *VerificationExpiryJob {
	return &VerificationExpiryJob{
		expirer:   expirer,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
	}
}

func (j *VerificationExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting verification expiry job",
		zap.Duration("interval", j.interval),
		zap.Int("batch_size", j.batchSize),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Verification expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Verification expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredSessions(ctx)
		}
	}
}

func (j *VerificationExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// processExpiredSessions drains full batches so a backlog clears within one tick
func (j *VerificationExpiryJob) processExpiredSessions(ctx context.Context) {
	total := 0
	for {
		n, err := j.expirer.ExpireStaleSessions(ctx, j.batchSize)
		if err != nil {
			logger.Error(ctx, "Error expiring verification sessions", zap.Error(err))
			break
		}
		total += n
		if n < j.batchSize || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		logger.Info(ctx, "Expired verification sessions", zap.Int("count", total))
	}
}
