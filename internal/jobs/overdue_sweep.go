package jobs

import (
	"context"
	"log/slog"
	"time"
)

type LateFeeAssessor interface {
	AssessLateFees(ctx context.Context, limit int32) (int, error)
}

// OverdueSweep periodically charges late fees on installments past due.
type OverdueSweep struct {
	assessor  LateFeeAssessor
	logger    *slog.Logger
	interval  time.Duration
	batchSize int32
}

func NewOverdueSweep(assessor LateFeeAssessor, logger *slog.Logger, interval time.Duration, batchSize int32) *OverdueSweep {
	if interval <= 0 {
		interval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &OverdueSweep{assessor: assessor, logger: logger, interval: interval, batchSize: batchSize}
}

func (s *OverdueSweep) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			assessed, err := s.assessor.AssessLateFees(ctx, s.batchSize)
			if err != nil {
				s.logger.Error("late fee sweep failed", "error", err)
				continue
			}
			if assessed > 0 {
				s.logger.Info("late fees assessed", "count", assessed)
			}
		}
	}
}
