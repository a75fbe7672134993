// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
)

const pageColumns = `id, company_id, published, has_unpublished_changes,
	seo_title, seo_description, scheduled_at, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (model.Page, error) {
	var p model.Page
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Published, &p.HasUnpublishedChanges,
		&p.SeoTitle, &p.SeoDescription, &p.ScheduledAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const createPage = `
INSERT INTO pages (id, company_id, published, has_unpublished_changes, created_at, updated_at)
VALUES (?, ?, 0, 1, ?, ?)
RETURNING ` + pageColumns

// CreatePageParams holds the arguments for CreatePage.
type CreatePageParams struct {
	ID        string
	CompanyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePage inserts the careers page for a company. New pages start
// unpublished with pending changes.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, createPage, arg.ID, arg.CompanyID, arg.CreatedAt, arg.UpdatedAt)
	return scanPage(row)
}

const getPage = `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

// GetPage fetches a page by id.
func (q *Queries) GetPage(ctx context.Context, id string) (model.Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPage, id))
}

const getPageByCompany = `SELECT ` + pageColumns + ` FROM pages WHERE company_id = ?`

// GetPageByCompany fetches the one page owned by a company.
func (q *Queries) GetPageByCompany(ctx context.Context, companyID string) (model.Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageByCompany, companyID))
}

const updatePageMeta = `
UPDATE pages
SET seo_title = ?, seo_description = ?, scheduled_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// UpdatePageMetaParams holds the arguments for UpdatePageMeta.
type UpdatePageMetaParams struct {
	SeoTitle       string
	SeoDescription string
	ScheduledAt    sql.NullTime
	UpdatedAt      time.Time
	ID             string
}

// UpdatePageMeta updates the draft-only display metadata of a page.
func (q *Queries) UpdatePageMeta(ctx context.Context, arg UpdatePageMetaParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, updatePageMeta,
		arg.SeoTitle, arg.SeoDescription, arg.ScheduledAt, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

const markPageDirty = `
UPDATE pages SET has_unpublished_changes = 1, updated_at = ? WHERE id = ?
`

// MarkPageDirtyParams holds the arguments for MarkPageDirty.
type MarkPageDirtyParams struct {
	UpdatedAt time.Time
	ID        string
}

// MarkPageDirty flags the page as having unpublished changes.
func (q *Queries) MarkPageDirty(ctx context.Context, arg MarkPageDirtyParams) error {
	_, err := q.db.ExecContext(ctx, markPageDirty, arg.UpdatedAt, arg.ID)
	return err
}

const setPagePublished = `
UPDATE pages
SET published = 1, has_unpublished_changes = 0, scheduled_at = NULL, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

// SetPagePublishedParams holds the arguments for SetPagePublished.
type SetPagePublishedParams struct {
	UpdatedAt time.Time
	ID        string
}

// SetPagePublished marks the page as published and clean. Any pending
// scheduled publish is cleared with it.
func (q *Queries) SetPagePublished(ctx context.Context, arg SetPagePublishedParams) (model.Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, setPagePublished, arg.UpdatedAt, arg.ID))
}

const clearPageDirty = `
UPDATE pages SET has_unpublished_changes = 0, updated_at = ? WHERE id = ?
RETURNING ` + pageColumns

// ClearPageDirtyParams holds the arguments for ClearPageDirty.
type ClearPageDirtyParams struct {
	UpdatedAt time.Time
	ID        string
}

// ClearPageDirty clears the unpublished-changes flag without touching the
// published flag.
func (q *Queries) ClearPageDirty(ctx context.Context, arg ClearPageDirtyParams) (model.Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, clearPageDirty, arg.UpdatedAt, arg.ID))
}

const listPagesDueForPublish = `
SELECT ` + pageColumns + `
FROM pages
WHERE scheduled_at IS NOT NULL AND scheduled_at <= ?
ORDER BY scheduled_at, id
`

// ListPagesDueForPublish returns pages whose scheduled publish time has
// passed.
func (q *Queries) ListPagesDueForPublish(ctx context.Context, now time.Time) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx, listPagesDueForPublish, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
