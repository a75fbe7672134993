// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
)

const sectionColumns = `id, page_id, type, position, enabled, data,
	published_data, published_position, published_enabled, created_at, updated_at`

func scanSection(row interface{ Scan(...any) error }) (model.Section, error) {
	var s model.Section
	var data, publishedData []byte
	err := row.Scan(
		&s.ID, &s.PageID, &s.Type, &s.Position, &s.Enabled, &data,
		&publishedData, &s.PublishedPosition, &s.PublishedEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	s.Data = json.RawMessage(data)
	if publishedData != nil {
		s.PublishedData = json.RawMessage(publishedData)
	}
	return s, nil
}

const createSection = `
INSERT INTO sections (id, page_id, type, position, enabled, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + sectionColumns

// CreateSectionParams holds the arguments for CreateSection.
type CreateSectionParams struct {
	ID        string
	PageID    string
	Type      model.SectionType
	Position  int64
	Enabled   bool
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateSection inserts a new section with an empty published snapshot.
func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, createSection,
		arg.ID, arg.PageID, arg.Type, arg.Position, arg.Enabled, string(arg.Data),
		arg.CreatedAt, arg.UpdatedAt)
	return scanSection(row)
}

const getSection = `SELECT ` + sectionColumns + ` FROM sections WHERE id = ?`

// GetSection fetches a section by id.
func (q *Queries) GetSection(ctx context.Context, id string) (model.Section, error) {
	return scanSection(q.db.QueryRowContext(ctx, getSection, id))
}

const listSectionsByPage = `
SELECT ` + sectionColumns + `
FROM sections
WHERE page_id = ?
ORDER BY position, id
`

// ListSectionsByPage returns all sections of a page in draft display order.
// Ties on position are broken by id for determinism.
func (q *Queries) ListSectionsByPage(ctx context.Context, pageID string) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, listSectionsByPage, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const listPublishedSectionsByPage = `
SELECT ` + sectionColumns + `
FROM sections
WHERE page_id = ? AND published_data IS NOT NULL AND published_enabled = 1
ORDER BY published_position, id
`

// ListPublishedSectionsByPage returns the publicly visible sections of a
// page in published display order.
func (q *Queries) ListPublishedSectionsByPage(ctx context.Context, pageID string) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedSectionsByPage, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const countSectionsByPage = `SELECT COUNT(*) FROM sections WHERE page_id = ?`

// CountSectionsByPage returns the number of draft sections on a page.
func (q *Queries) CountSectionsByPage(ctx context.Context, pageID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countSectionsByPage, pageID).Scan(&count)
	return count, err
}

const updateSectionDraft = `
UPDATE sections
SET position = ?, enabled = ?, data = ?, updated_at = ?
WHERE id = ?
RETURNING ` + sectionColumns

// UpdateSectionDraftParams holds the arguments for UpdateSectionDraft.
type UpdateSectionDraftParams struct {
	Position  int64
	Enabled   bool
	Data      json.RawMessage
	UpdatedAt time.Time
	ID        string
}

// UpdateSectionDraft writes the full draft triple of a section. The
// published snapshot is never touched here.
func (q *Queries) UpdateSectionDraft(ctx context.Context, arg UpdateSectionDraftParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, updateSectionDraft,
		arg.Position, arg.Enabled, string(arg.Data), arg.UpdatedAt, arg.ID)
	return scanSection(row)
}

const updateSectionPosition = `
UPDATE sections SET position = ?, updated_at = ? WHERE id = ?
`

// UpdateSectionPositionParams holds the arguments for UpdateSectionPosition.
type UpdateSectionPositionParams struct {
	Position  int64
	UpdatedAt time.Time
	ID        string
}

// UpdateSectionPosition updates only the draft position of a section.
func (q *Queries) UpdateSectionPosition(ctx context.Context, arg UpdateSectionPositionParams) error {
	_, err := q.db.ExecContext(ctx, updateSectionPosition, arg.Position, arg.UpdatedAt, arg.ID)
	return err
}

const deleteSection = `DELETE FROM sections WHERE id = ?`

// DeleteSection removes a section.
func (q *Queries) DeleteSection(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSection, id)
	return err
}

const snapshotSectionsByPage = `
UPDATE sections
SET published_data = data,
    published_position = position,
    published_enabled = enabled,
    updated_at = ?
WHERE page_id = ?
`

// SnapshotSectionsByPageParams holds the arguments for SnapshotSectionsByPage.
type SnapshotSectionsByPageParams struct {
	UpdatedAt time.Time
	PageID    string
}

// SnapshotSectionsByPage copies the draft triple of every section of a page
// into its published triple. This is the copy-on-publish step.
func (q *Queries) SnapshotSectionsByPage(ctx context.Context, arg SnapshotSectionsByPageParams) error {
	_, err := q.db.ExecContext(ctx, snapshotSectionsByPage, arg.UpdatedAt, arg.PageID)
	return err
}

const restoreSectionsByPage = `
UPDATE sections
SET data = published_data,
    position = published_position,
    enabled = published_enabled,
    updated_at = ?
WHERE page_id = ? AND published_data IS NOT NULL
`

// RestoreSectionsByPageParams holds the arguments for RestoreSectionsByPage.
type RestoreSectionsByPageParams struct {
	UpdatedAt time.Time
	PageID    string
}

// RestoreSectionsByPage overwrites the draft triple of every section that
// has a published snapshot with that snapshot. Sections without a snapshot
// are untouched; DeleteUnpublishedSectionsByPage removes those.
func (q *Queries) RestoreSectionsByPage(ctx context.Context, arg RestoreSectionsByPageParams) error {
	_, err := q.db.ExecContext(ctx, restoreSectionsByPage, arg.UpdatedAt, arg.PageID)
	return err
}

const deleteUnpublishedSectionsByPage = `
DELETE FROM sections WHERE page_id = ? AND published_data IS NULL
`

// DeleteUnpublishedSectionsByPage removes every section of a page that has
// never survived a publish. Used by Discard: those sections have nothing to
// revert to.
func (q *Queries) DeleteUnpublishedSectionsByPage(ctx context.Context, pageID string) error {
	_, err := q.db.ExecContext(ctx, deleteUnpublishedSectionsByPage, pageID)
	return err
}
