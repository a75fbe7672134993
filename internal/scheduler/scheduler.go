// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crewpage/crewpage-go/internal/service"
)

// eventRetention is how long audit events are kept before the daily
// cleanup job removes them.
const eventRetention = 90 * 24 * time.Hour

// Scheduler runs background jobs: publishing pages whose scheduled
// time has passed, and pruning old audit events.
type Scheduler struct {
	engine *service.VersioningService
	events *service.EventService
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(engine *service.VersioningService, events *service.EventService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine: engine,
		events: events,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and begins the scheduler.
func (s *Scheduler) Start() error {
	// Check for due scheduled publishes every minute
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.processDuePages(); err != nil {
			s.logger.Error("failed to process scheduled publishes", "error", err)
		}
	})
	if err != nil {
		return err
	}

	// Prune old audit events once a day
	_, err = s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune old events", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// processDuePages publishes every page whose scheduled time has passed.
func (s *Scheduler) processDuePages() error {
	ctx := context.Background()

	count, err := s.engine.PublishDue(ctx, time.Now())
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("published scheduled pages", "count", count)
	}
	return nil
}

// pruneEvents deletes audit events older than the retention window.
func (s *Scheduler) pruneEvents() error {
	if s.events == nil {
		return nil
	}
	return s.events.DeleteOldEvents(context.Background(), eventRetention)
}
