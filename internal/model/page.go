// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Page lifecycle states, derived from the published and
// has_unpublished_changes flags.
const (
	PageStateUnpublished    = "unpublished"
	PageStatePublishedClean = "published"
	PageStatePublishedDirty = "published_dirty"
)

// Page represents a company's careers page. There is exactly one page per
// company; it is created together with the company and its draft/published
// flags are mutated only by the versioning service.
type Page struct {
	ID                    string       `json:"id"`
	CompanyID             string       `json:"company_id"`
	Published             bool         `json:"published"`
	HasUnpublishedChanges bool         `json:"has_unpublished_changes"`
	SeoTitle              string       `json:"seo_title,omitempty"`
	SeoDescription        string       `json:"seo_description,omitempty"`
	ScheduledAt           sql.NullTime `json:"-"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// State returns the page's lifecycle state.
func (p *Page) State() string {
	switch {
	case !p.Published:
		return PageStateUnpublished
	case p.HasUnpublishedChanges:
		return PageStatePublishedDirty
	default:
		return PageStatePublishedClean
	}
}

// IsScheduled reports whether the page has a pending scheduled publish.
func (p *Page) IsScheduled() bool {
	return p.ScheduledAt.Valid
}
