// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestPageState(t *testing.T) {
	tests := []struct {
		name      string
		published bool
		dirty     bool
		want      string
	}{
		{"new page", false, true, PageStateUnpublished},
		{"never published and clean", false, false, PageStateUnpublished},
		{"published clean", true, false, PageStatePublishedClean},
		{"published dirty", true, true, PageStatePublishedDirty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page{Published: tt.published, HasUnpublishedChanges: tt.dirty}
			if got := p.State(); got != tt.want {
				t.Errorf("State() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageIsScheduled(t *testing.T) {
	p := Page{}
	if p.IsScheduled() {
		t.Error("IsScheduled() = true for page without schedule")
	}

	p.ScheduledAt = sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true}
	if !p.IsScheduled() {
		t.Error("IsScheduled() = false for scheduled page")
	}
}
