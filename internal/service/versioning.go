// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewpage/crewpage-go/internal/cache"
	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/store"
)

// VersioningService is the draft/publish engine for careers pages. Every
// section mutation goes through it so the page's dirty flag stays correct;
// nothing else writes sections or page flags. Publish and Discard rewrite
// the whole section table of a page in one transaction.
type VersioningService struct {
	db      *sql.DB
	queries *store.Queries

	pageCache *cache.PageCache
	events    *EventService
}

// NewVersioningService creates a new VersioningService.
func NewVersioningService(db *sql.DB) *VersioningService {
	return &VersioningService{
		db:      db,
		queries: store.New(db),
	}
}

// SetPageCache wires the published-page cache; Publish, Discard and page
// metadata updates invalidate it.
func (s *VersioningService) SetPageCache(pc *cache.PageCache) {
	s.pageCache = pc
}

// SetEventService wires audit event logging for page lifecycle changes.
func (s *VersioningService) SetEventService(es *EventService) {
	s.events = es
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (s *VersioningService) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(s.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// pageForCompany resolves the company's single page, mapping a missing row
// to ErrNotFound.
func (s *VersioningService) pageForCompany(ctx context.Context, companyID string) (model.Page, error) {
	page, err := s.queries.GetPageByCompany(ctx, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.ErrNotFound
	}
	return page, err
}

// sectionForCompany resolves a section and verifies it belongs to the
// company's page. A section owned by another company is indistinguishable
// from a missing one.
func (s *VersioningService) sectionForCompany(ctx context.Context, companyID, sectionID string) (model.Section, model.Page, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return model.Section{}, model.Page{}, err
	}
	section, err := s.queries.GetSection(ctx, sectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, model.Page{}, model.ErrNotFound
	}
	if err != nil {
		return model.Section{}, model.Page{}, err
	}
	if section.PageID != page.ID {
		return model.Section{}, model.Page{}, model.ErrNotFound
	}
	return section, page, nil
}

func (s *VersioningService) invalidatePageCache(ctx context.Context, companyID string) {
	if s.pageCache == nil {
		return
	}
	company, err := s.queries.GetCompany(ctx, companyID)
	if err != nil {
		return
	}
	_ = s.pageCache.Invalidate(ctx, company.Slug)
}

// CreateSectionInput holds the mutable fields of a new section. Position
// defaults to the current section count (append at the end) and Enabled
// defaults to true.
type CreateSectionInput struct {
	Type     model.SectionType
	Data     json.RawMessage
	Position *int64
	Enabled  *bool
}

// CreateSection validates the payload against the section type's schema,
// inserts the section with an empty published snapshot and marks the page
// dirty.
func (s *VersioningService) CreateSection(ctx context.Context, companyID string, input CreateSectionInput) (model.Section, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return model.Section{}, err
	}

	if !model.IsValidSectionType(input.Type) {
		verr := model.NewValidationError()
		verr.Add("type", fmt.Sprintf("unknown section type %q", input.Type))
		return model.Section{}, verr
	}
	data, verr := model.ValidateSectionData(input.Type, input.Data)
	if verr != nil {
		return model.Section{}, verr
	}

	position := int64(0)
	if input.Position != nil {
		position = *input.Position
	} else {
		count, err := s.queries.CountSectionsByPage(ctx, page.ID)
		if err != nil {
			return model.Section{}, err
		}
		position = count
	}
	if position < 0 {
		verr := model.NewValidationError()
		verr.Add("position", "must not be negative")
		return model.Section{}, verr
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	now := time.Now()
	var section model.Section
	err = s.withTx(ctx, func(q *store.Queries) error {
		var err error
		section, err = q.CreateSection(ctx, store.CreateSectionParams{
			ID:        uuid.New().String(),
			PageID:    page.ID,
			Type:      input.Type,
			Position:  position,
			Enabled:   enabled,
			Data:      data,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		return q.MarkPageDirty(ctx, store.MarkPageDirtyParams{UpdatedAt: now, ID: page.ID})
	})
	if err != nil {
		return model.Section{}, err
	}

	if s.events != nil {
		_ = s.events.LogSectionEvent(ctx, model.EventLevelInfo, "Section created", companyID, "",
			map[string]any{"section_id": section.ID, "type": string(section.Type)})
	}
	return section, nil
}

// UpdateSectionInput is a partial patch of a section's draft triple. Nil
// fields are left unchanged; the section's type is immutable.
type UpdateSectionInput struct {
	Position *int64
	Enabled  *bool
	Data     json.RawMessage
}

// UpdateSection applies a partial patch to a section's draft fields and
// marks the page dirty. The published snapshot is never touched. The page
// is dirtied on every accepted write, even one that changes nothing.
func (s *VersioningService) UpdateSection(ctx context.Context, companyID, sectionID string, input UpdateSectionInput) (model.Section, error) {
	section, page, err := s.sectionForCompany(ctx, companyID, sectionID)
	if err != nil {
		return model.Section{}, err
	}

	position := section.Position
	if input.Position != nil {
		if *input.Position < 0 {
			verr := model.NewValidationError()
			verr.Add("position", "must not be negative")
			return model.Section{}, verr
		}
		position = *input.Position
	}
	enabled := section.Enabled
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	data := section.Data
	if input.Data != nil {
		var verr *model.ValidationError
		data, verr = model.ValidateSectionData(section.Type, input.Data)
		if verr != nil {
			return model.Section{}, verr
		}
	}

	now := time.Now()
	var updated model.Section
	err = s.withTx(ctx, func(q *store.Queries) error {
		var err error
		updated, err = q.UpdateSectionDraft(ctx, store.UpdateSectionDraftParams{
			Position:  position,
			Enabled:   enabled,
			Data:      data,
			UpdatedAt: now,
			ID:        section.ID,
		})
		if err != nil {
			return err
		}
		return q.MarkPageDirty(ctx, store.MarkPageDirtyParams{UpdatedAt: now, ID: page.ID})
	})
	if err != nil {
		return model.Section{}, err
	}
	return updated, nil
}

// DeleteSection removes a section immediately, published snapshot or not,
// and marks the page dirty. There is no soft delete: a Discard after this
// will not resurrect the section.
func (s *VersioningService) DeleteSection(ctx context.Context, companyID, sectionID string) error {
	section, page, err := s.sectionForCompany(ctx, companyID, sectionID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.withTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteSection(ctx, section.ID); err != nil {
			return err
		}
		return q.MarkPageDirty(ctx, store.MarkPageDirtyParams{UpdatedAt: now, ID: page.ID})
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.LogSectionEvent(ctx, model.EventLevelInfo, "Section deleted", companyID, "",
			map[string]any{"section_id": section.ID, "type": string(section.Type)})
	}
	return nil
}

// Reorder assigns each listed section's position to its index in the list.
// The list may cover a subset of the page's sections; unlisted sections
// keep their positions. The whole batch applies in one transaction or not
// at all. An id that does not belong to the page fails the batch with
// ErrNotFound.
func (s *VersioningService) Reorder(ctx context.Context, companyID string, orderedSectionIDs []string) error {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if len(orderedSectionIDs) == 0 {
		verr := model.NewValidationError()
		verr.Add("section_ids", "must not be empty")
		return verr
	}

	sections, err := s.queries.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		return err
	}
	owned := make(map[string]bool, len(sections))
	for _, sec := range sections {
		owned[sec.ID] = true
	}
	seen := make(map[string]bool, len(orderedSectionIDs))
	for _, id := range orderedSectionIDs {
		if !owned[id] {
			return model.ErrNotFound
		}
		if seen[id] {
			verr := model.NewValidationError()
			verr.Add("section_ids", fmt.Sprintf("duplicate section id %q", id))
			return verr
		}
		seen[id] = true
	}

	now := time.Now()
	return s.withTx(ctx, func(q *store.Queries) error {
		for i, id := range orderedSectionIDs {
			err := q.UpdateSectionPosition(ctx, store.UpdateSectionPositionParams{
				Position:  int64(i),
				UpdatedAt: now,
				ID:        id,
			})
			if err != nil {
				return err
			}
		}
		return q.MarkPageDirty(ctx, store.MarkPageDirtyParams{UpdatedAt: now, ID: page.ID})
	})
}

// Publish promotes the page's entire draft state to the published snapshot:
// every section's draft triple is copied into its published triple, the
// page becomes published and clean, and any pending scheduled publish is
// cleared. Valid from any state. Copy-on-publish is what gives Discard
// something to restore.
func (s *VersioningService) Publish(ctx context.Context, companyID string) (model.Page, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return model.Page{}, err
	}

	now := time.Now()
	var published model.Page
	err = s.withTx(ctx, func(q *store.Queries) error {
		err := q.SnapshotSectionsByPage(ctx, store.SnapshotSectionsByPageParams{
			UpdatedAt: now,
			PageID:    page.ID,
		})
		if err != nil {
			return err
		}
		published, err = q.SetPagePublished(ctx, store.SetPagePublishedParams{UpdatedAt: now, ID: page.ID})
		return err
	})
	if err != nil {
		return model.Page{}, err
	}

	s.invalidatePageCache(ctx, companyID)
	if s.events != nil {
		_ = s.events.LogPageEvent(ctx, model.EventLevelInfo, "Page published", companyID, "",
			map[string]any{"page_id": page.ID})
	}
	return published, nil
}

// Discard reverts the page's draft state to the last published snapshot:
// sections with a snapshot get their draft triple overwritten from it,
// sections created since the last publish are deleted, and the dirty flag
// clears. It undoes everything since the snapshot, not the snapshot
// itself. Requires a published page; discarding an unpublished page is
// ErrInvalidState, not a no-op.
func (s *VersioningService) Discard(ctx context.Context, companyID string) (model.Page, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return model.Page{}, err
	}
	if !page.Published {
		return model.Page{}, model.ErrInvalidState
	}

	now := time.Now()
	var cleaned model.Page
	err = s.withTx(ctx, func(q *store.Queries) error {
		err := q.RestoreSectionsByPage(ctx, store.RestoreSectionsByPageParams{
			UpdatedAt: now,
			PageID:    page.ID,
		})
		if err != nil {
			return err
		}
		if err := q.DeleteUnpublishedSectionsByPage(ctx, page.ID); err != nil {
			return err
		}
		cleaned, err = q.ClearPageDirty(ctx, store.ClearPageDirtyParams{UpdatedAt: now, ID: page.ID})
		return err
	})
	if err != nil {
		return model.Page{}, err
	}

	s.invalidatePageCache(ctx, companyID)
	if s.events != nil {
		_ = s.events.LogPageEvent(ctx, model.EventLevelInfo, "Draft changes discarded", companyID, "",
			map[string]any{"page_id": page.ID})
	}
	return cleaned, nil
}

// GetPage returns the company's page.
func (s *VersioningService) GetPage(ctx context.Context, companyID string) (model.Page, error) {
	return s.pageForCompany(ctx, companyID)
}

// GetSection returns one section of the company's page.
func (s *VersioningService) GetSection(ctx context.Context, companyID, sectionID string) (model.Section, error) {
	section, _, err := s.sectionForCompany(ctx, companyID, sectionID)
	return section, err
}

// ListSections returns the company's draft sections in display order.
func (s *VersioningService) ListSections(ctx context.Context, companyID string) ([]model.Section, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.queries.ListSectionsByPage(ctx, page.ID)
}

// UpdatePageMetaInput is a partial patch of a page's display metadata.
type UpdatePageMetaInput struct {
	SeoTitle       *string
	SeoDescription *string
	ScheduledAt    *time.Time
	ClearSchedule  bool
}

// UpdatePageMeta patches the page's draft-only display metadata and the
// scheduled publish time. Metadata is outside the section snapshot, so this
// does not dirty the page, but it does invalidate the public cache.
func (s *VersioningService) UpdatePageMeta(ctx context.Context, companyID string, input UpdatePageMetaInput) (model.Page, error) {
	page, err := s.pageForCompany(ctx, companyID)
	if err != nil {
		return model.Page{}, err
	}

	seoTitle := page.SeoTitle
	if input.SeoTitle != nil {
		seoTitle = *input.SeoTitle
	}
	seoDescription := page.SeoDescription
	if input.SeoDescription != nil {
		seoDescription = *input.SeoDescription
	}
	scheduledAt := page.ScheduledAt
	if input.ClearSchedule {
		scheduledAt = sql.NullTime{}
	} else if input.ScheduledAt != nil {
		if input.ScheduledAt.Before(time.Now()) {
			verr := model.NewValidationError()
			verr.Add("scheduled_at", "must be in the future")
			return model.Page{}, verr
		}
		scheduledAt = sql.NullTime{Time: *input.ScheduledAt, Valid: true}
	}

	updated, err := s.queries.UpdatePageMeta(ctx, store.UpdatePageMetaParams{
		SeoTitle:       seoTitle,
		SeoDescription: seoDescription,
		ScheduledAt:    scheduledAt,
		UpdatedAt:      time.Now(),
		ID:             page.ID,
	})
	if err != nil {
		return model.Page{}, err
	}

	s.invalidatePageCache(ctx, companyID)
	return updated, nil
}

// PublishDue publishes every page whose scheduled publish time has passed.
// Returns the number of pages published. Used by the scheduler.
func (s *VersioningService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.queries.ListPagesDueForPublish(ctx, now)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, page := range due {
		if _, err := s.Publish(ctx, page.CompanyID); err != nil {
			if s.events != nil {
				_ = s.events.LogPageEvent(ctx, model.EventLevelError, "Scheduled publish failed", page.CompanyID, "",
					map[string]any{"page_id": page.ID, "error": err.Error()})
			}
			continue
		}
		published++
	}
	return published, nil
}

// PublishedDocument is the public JSON shape of a published careers page.
// Only the published triple is exposed; drafts never leak through here.
type PublishedDocument struct {
	Company struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"company"`
	SeoTitle       string                     `json:"seo_title,omitempty"`
	SeoDescription string                     `json:"seo_description,omitempty"`
	Sections       []PublishedDocumentSection `json:"sections"`
}

// PublishedDocumentSection is one publicly visible section.
type PublishedDocumentSection struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PublishedPage assembles the public document for a company slug from the
// published snapshot: enabled sections only, ordered by published position.
// An unknown slug and a page that has never been published are both
// ErrNotFound.
func (s *VersioningService) PublishedPage(ctx context.Context, slug string) (*PublishedDocument, error) {
	company, err := s.queries.GetCompanyBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	page, err := s.pageForCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if !page.Published {
		return nil, model.ErrNotFound
	}

	sections, err := s.queries.ListPublishedSectionsByPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	doc := &PublishedDocument{
		SeoTitle:       page.SeoTitle,
		SeoDescription: page.SeoDescription,
		Sections:       make([]PublishedDocumentSection, 0, len(sections)),
	}
	doc.Company.Name = company.Name
	doc.Company.Slug = company.Slug
	for _, sec := range sections {
		doc.Sections = append(doc.Sections, PublishedDocumentSection{
			ID:   sec.ID,
			Type: string(sec.Type),
			Data: sec.PublishedData,
		})
	}
	return doc, nil
}
