package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const defaultSettlementInterval = 30 * time.Second

type settlementRunner interface {
	Run(ctx context.Context, input SettlementRunInput) (SettlementRunResult, error)
}

// SettlementScheduler runs settlement cycles on a fixed interval. Cycles
// never overlap: a tick or manual trigger during a running cycle is skipped.
type SettlementScheduler struct {
	task     settlementRunner
	interval time.Duration
	logger   *logging.Logger
	running  atomic.Bool
	skipped  atomic.Int64
}

func NewSettlementScheduler(task settlementRunner, interval time.Duration, logger *logging.Logger) *SettlementScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultSettlementInterval
	}
	return &SettlementScheduler{
		task:     task,
		interval: interval,
		logger:   logger.Named("settlement_scheduler"),
	}
}

// Run blocks until ctx is cancelled.
func (s *SettlementScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "settlement scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "settlement scheduler stopped", "skipped_ticks", s.skipped.Load())
			return
		case <-ticker.C:
			if _, err := s.TriggerOnce(ctx, SettlementRunInput{}); err != nil {
				if errors.Is(err, ErrSettlementInProgress) {
					continue
				}
				s.logger.ErrorContext(ctx, "settlement cycle failed", "error", err)
			}
		}
	}
}

// TriggerOnce runs a single cycle unless one is already in progress.
func (s *SettlementScheduler) TriggerOnce(ctx context.Context, input SettlementRunInput) (SettlementRunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.DebugContext(ctx, "settlement cycle skipped, previous cycle still running")
		return SettlementRunResult{}, ErrSettlementInProgress
	}
	defer s.running.Store(false)

	return s.task.Run(ctx, input)
}

func (s *SettlementScheduler) Skipped() int64 {
	return s.skipped.Load()
}
