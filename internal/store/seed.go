// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewpage/crewpage-go/internal/model"
)

// Demo company seeded in development.
const (
	DemoCompanyName = "Acme Robotics"
	DemoCompanySlug = "acme-robotics"
)

// EnsureBootstrapToken creates a service-wide admin token from the raw
// value supplied via configuration. It is idempotent: if the token already
// exists nothing happens. Without a bootstrap token a fresh install has no
// way to create the first company.
func EnsureBootstrapToken(ctx context.Context, db *sql.DB, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	if len(rawToken) < 16 {
		return fmt.Errorf("bootstrap token must be at least 16 characters, got %d", len(rawToken))
	}

	queries := New(db)
	keyHash := model.HashAccessToken(rawToken)

	_, err := queries.GetAccessTokenByHash(ctx, keyHash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for bootstrap token: %w", err)
	}

	now := time.Now()
	prefix := rawToken
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	_, err = queries.CreateAccessToken(ctx, CreateAccessTokenParams{
		Name:      "bootstrap",
		KeyHash:   keyHash,
		KeyPrefix: prefix,
		Role:      model.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap token: %w", err)
	}

	slog.Info("created bootstrap service token", "prefix", prefix)
	return nil
}

// SeedDemo creates a demo company with a partially built careers page.
// It runs only when enabled and only on an empty database.
func SeedDemo(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	queries := New(db)

	_, err := queries.GetCompanyBySlug(ctx, DemoCompanySlug)
	if err == nil {
		slog.Info("demo company already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for demo company: %w", err)
	}

	now := time.Now()
	company, err := queries.CreateCompany(ctx, CreateCompanyParams{
		ID:        uuid.NewString(),
		Name:      DemoCompanyName,
		Slug:      DemoCompanySlug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating demo company: %w", err)
	}

	page, err := queries.CreatePage(ctx, CreatePageParams{
		ID:        uuid.NewString(),
		CompanyID: company.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating demo page: %w", err)
	}

	demoSections := []CreateSectionParams{
		{
			ID:       uuid.NewString(),
			PageID:   page.ID,
			Type:     model.SectionTypeHero,
			Position: 0,
			Enabled:  true,
			Data:     []byte(`{"title":"Join Acme Robotics","subtitle":"Help us build the future"}`),
		},
		{
			ID:       uuid.NewString(),
			PageID:   page.ID,
			Type:     model.SectionTypeAbout,
			Position: 1,
			Enabled:  true,
			Data:     []byte(`{"heading":"Who we are","body":"<p>We design and ship industrial robots.</p>"}`),
		},
		{
			ID:       uuid.NewString(),
			PageID:   page.ID,
			Type:     model.SectionTypeJobList,
			Position: 2,
			Enabled:  true,
			Data:     []byte(`{"heading":"Open positions"}`),
		},
	}

	for _, params := range demoSections {
		params.CreatedAt = now
		params.UpdatedAt = now
		if _, err := queries.CreateSection(ctx, params); err != nil {
			return fmt.Errorf("creating demo section: %w", err)
		}
	}

	slog.Info("seeded demo company",
		"company", company.Name,
		"slug", company.Slug,
		"sections", len(demoSections),
	)
	return nil
}
