// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryPage    = "page"
	EventCategorySection = "section"
	EventCategoryCompany = "company"
	EventCategoryCache   = "cache"
	EventCategorySystem  = "system"
)

// Event represents one audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	CompanyID sql.NullString
	Metadata  string // JSON string
	IPAddress string
	CreatedAt time.Time
}
