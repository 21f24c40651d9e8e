package scheduler

import (
	"context"
	"time"

	"slumpers-ticketing/internal/service"
	"slumpers-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// RetentionScheduler deletes ticket records for events that ended more than
// the retention window ago. Used and cancelled rows go too; the ledger is an
// operational store, not an archive.
type RetentionScheduler struct {
	tickets   service.TicketService
	retention time.Duration
	interval  time.Duration
}

func NewRetentionScheduler(tickets service.TicketService, retentionDays int) *RetentionScheduler {
	return &RetentionScheduler{
		tickets:   tickets,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  12 * time.Hour,
	}
}

func (s *RetentionScheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *RetentionScheduler) sweep(ctx context.Context) {
	deleted, err := s.tickets.DeleteExpired(ctx, s.retention)
	if err != nil {
		logger.WithComponent("scheduler").Error("retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.WithComponent("scheduler").Info("retention sweep done", zap.Int64("deleted", deleted))
	}
}
