// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Reconciler runs [Service.Reconcile] on a cron schedule.
type Reconciler struct {
	cron    *cron.Cron
	service *Service
	logger  *slog.Logger
	baseCtx context.Context
}

/*
NewReconciler schedules the reconcile pass.

Parameters:
  - baseCtx: context.Context (cancelled on shutdown; passed to every run)
  - service: *Service
  - schedule: string (standard cron expression or a descriptor such as "@every 5m")
  - logger: *slog.Logger

Returns:
  - *Reconciler: nil when schedule is empty, which disables the job
  - error: Invalid schedule
*/
func NewReconciler(baseCtx context.Context, service *Service, schedule string, logger *slog.Logger) (*Reconciler, error) {
	if schedule == "" {
		return nil, nil
	}

	reconciler := &Reconciler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		logger:  logger,
		baseCtx: baseCtx,
	}

	if _, err := reconciler.cron.AddFunc(schedule, reconciler.run); err != nil {
		return nil, fmt.Errorf("wallet: invalid reconcile schedule %q: %w", schedule, err)
	}
	return reconciler, nil
}

func (reconciler *Reconciler) run() {
	if reconciler.baseCtx.Err() != nil {
		return
	}
	if _, err := reconciler.service.Reconcile(reconciler.baseCtx); err != nil {
		reconciler.logger.ErrorContext(reconciler.baseCtx, "reconcile_failed", slog.String("error", err.Error()))
	}
}

// Start begins the schedule in its own goroutine.
func (reconciler *Reconciler) Start() {
	if reconciler == nil {
		return
	}
	reconciler.cron.Start()
	reconciler.logger.Info("reconcile_scheduler_started")
}

// Stop halts the schedule and waits for a running pass to return.
func (reconciler *Reconciler) Stop() {
	if reconciler == nil {
		return
	}
	<-reconciler.cron.Stop().Done()
	reconciler.logger.Info("reconcile_scheduler_stopped")
}
