// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/store"
	"github.com/crewpage/crewpage-go/internal/util"
)

// CompanyService provisions companies. Creating a company always creates
// its careers page in the same transaction: there is never a company
// without a page.
type CompanyService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(db *sql.DB) *CompanyService {
	return &CompanyService{
		db:      db,
		queries: store.New(db),
	}
}

// SetEventService wires audit event logging.
func (s *CompanyService) SetEventService(es *EventService) {
	s.events = es
}

// Create provisions a company and its unpublished careers page. The slug is
// derived from the name unless one is supplied explicitly.
func (s *CompanyService) Create(ctx context.Context, name, slug string) (model.Company, model.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr := model.NewValidationError()
		verr.Add("name", "is required")
		return model.Company{}, model.Page{}, verr
	}
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsValidSlug(slug) {
		verr := model.NewValidationError()
		verr.Add("slug", "must contain only lowercase letters, digits and hyphens")
		return model.Company{}, model.Page{}, verr
	}

	if _, err := s.queries.GetCompanyBySlug(ctx, slug); err == nil {
		verr := model.NewValidationError()
		verr.Add("slug", fmt.Sprintf("%q is already taken", slug))
		return model.Company{}, model.Page{}, verr
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, model.Page{}, err
	}

	now := time.Now()
	var company model.Company
	var page model.Page
	err := s.withTx(ctx, func(q *store.Queries) error {
		var err error
		company, err = q.CreateCompany(ctx, store.CreateCompanyParams{
			ID:        uuid.New().String(),
			Name:      name,
			Slug:      slug,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		page, err = q.CreatePage(ctx, store.CreatePageParams{
			ID:        uuid.New().String(),
			CompanyID: company.ID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return model.Company{}, model.Page{}, err
	}

	if s.events != nil {
		_ = s.events.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryCompany,
			"Company created", company.ID, "", map[string]any{"slug": company.Slug})
	}
	return company, page, nil
}

// Get returns a company by id, mapping a missing row to ErrNotFound.
func (s *CompanyService) Get(ctx context.Context, id string) (model.Company, error) {
	company, err := s.queries.GetCompany(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, model.ErrNotFound
	}
	return company, err
}

// IssueToken creates a new access token scoped to a company. The raw key is
// returned exactly once; only its hash is stored.
func (s *CompanyService) IssueToken(ctx context.Context, companyID, name, role string) (model.AccessToken, string, error) {
	if !model.IsValidRole(role) {
		verr := model.NewValidationError()
		verr.Add("role", fmt.Sprintf("unknown role %q", role))
		return model.AccessToken{}, "", verr
	}
	name = strings.TrimSpace(name)
	if name == "" {
		verr := model.NewValidationError()
		verr.Add("name", "is required")
		return model.AccessToken{}, "", verr
	}
	if _, err := s.Get(ctx, companyID); err != nil {
		return model.AccessToken{}, "", err
	}

	rawKey, prefix, err := model.GenerateAccessToken()
	if err != nil {
		return model.AccessToken{}, "", fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	token, err := s.queries.CreateAccessToken(ctx, store.CreateAccessTokenParams{
		CompanyID: sql.NullString{String: companyID, Valid: true},
		Name:      name,
		KeyHash:   model.HashAccessToken(rawKey),
		KeyPrefix: prefix,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.AccessToken{}, "", err
	}

	if s.events != nil {
		_ = s.events.LogAuthEvent(ctx, model.EventLevelInfo, "Access token issued", companyID, "",
			map[string]any{"token_id": token.ID, "role": role})
	}
	return token, rawKey, nil
}

func (s *CompanyService) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
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
