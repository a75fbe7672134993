// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
)

const createCompany = `
INSERT INTO companies (id, name, slug, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, slug, created_at, updated_at
`

// CreateCompanyParams holds the arguments for CreateCompany.
type CreateCompanyParams struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCompany inserts a new company.
func (q *Queries) CreateCompany(ctx context.Context, arg CreateCompanyParams) (model.Company, error) {
	row := q.db.QueryRowContext(ctx, createCompany,
		arg.ID, arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt)
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCompany = `
SELECT id, name, slug, created_at, updated_at
FROM companies WHERE id = ?
`

// GetCompany fetches a company by id.
func (q *Queries) GetCompany(ctx context.Context, id string) (model.Company, error) {
	row := q.db.QueryRowContext(ctx, getCompany, id)
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCompanyBySlug = `
SELECT id, name, slug, created_at, updated_at
FROM companies WHERE slug = ?
`

// GetCompanyBySlug fetches a company by its public slug.
func (q *Queries) GetCompanyBySlug(ctx context.Context, slug string) (model.Company, error) {
	row := q.db.QueryRowContext(ctx, getCompanyBySlug, slug)
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCompanies = `
SELECT id, name, slug, created_at, updated_at
FROM companies ORDER BY name, id
`

// ListCompanies returns all companies ordered by name.
func (q *Queries) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := q.db.QueryContext(ctx, listCompanies)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
