// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"testing"

	"github.com/crewpage/crewpage-go/internal/service"
	"github.com/crewpage/crewpage-go/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.TestLogger()

	s := New(nil, nil, logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger != logger {
		t.Error("New() scheduler has wrong logger")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	engine := service.NewVersioningService(db)
	events := service.NewEventService(db)
	s := New(engine, events, testutil.TestLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("Start() registered %d jobs, want 2", got)
	}

	s.Stop()
}

func TestScheduler_ProcessDuePagesEmpty(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	engine := service.NewVersioningService(db)
	s := New(engine, service.NewEventService(db), testutil.TestLogger())

	if err := s.processDuePages(); err != nil {
		t.Fatalf("processDuePages() error = %v", err)
	}
}

func TestScheduler_PruneEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	s := New(service.NewVersioningService(db), service.NewEventService(db), testutil.TestLogger())
	if err := s.pruneEvents(); err != nil {
		t.Fatalf("pruneEvents() error = %v", err)
	}
}
