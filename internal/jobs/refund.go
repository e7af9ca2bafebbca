package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dice-settle/internal/logger"
)

type Refunder interface {
	RefundExpired(ctx context.Context) (int, error)
}

// RefundJob periodically returns wagers of bets the house never settled.
type RefundJob struct {
	refunder Refunder
	interval time.Duration
}

func NewRefundJob(r Refunder, interval time.Duration) *RefundJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RefundJob{refunder: r, interval: interval}
}

func (j *RefundJob) Name() string {
	return "refund_expired"
}

func (j *RefundJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.refunder.RefundExpired(ctx)
			if err != nil {
				logger.Log.Error("refund sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("refunded expired bets", zap.Int("count", n))
			}
		}
	}
}
