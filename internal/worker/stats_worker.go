package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
)

// StatsWorker periodically samples workforce and payroll counters into gauges
type StatsWorker struct {
	userRepository    domain.UserRepository
	payrollRepository domain.PayrollRepository
	logger            *slog.Logger
	interval          time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	userRepo domain.UserRepository,
	payrollRepo domain.PayrollRepository,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	return &StatsWorker{
		userRepository:    userRepo,
		payrollRepository: payrollRepo,
		logger:            logger,
		interval:          interval,
	}
}

// Start begins the sampling loop. It runs until the context is cancelled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	w.sample()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *StatsWorker) sample() {
	pending, err := w.payrollRepository.CountPendingRequests()
	if err != nil {
		w.logger.Error("failed to count pending payroll requests",
			slog.String("error", err.Error()),
		)
	} else {
		metrics.SetPendingPayrollRequests(pending)
	}

	active, err := w.userRepository.CountActive()
	if err != nil {
		w.logger.Error("failed to count active staff",
			slog.String("error", err.Error()),
		)
	} else {
		metrics.SetActiveStaff(active)
	}
}
