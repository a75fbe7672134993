// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
)

const tokenColumns = `id, company_id, name, key_hash, key_prefix, role,
	last_used_at, is_active, created_at, updated_at`

func scanToken(row interface{ Scan(...any) error }) (model.AccessToken, error) {
	var t model.AccessToken
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Name, &t.KeyHash, &t.KeyPrefix, &t.Role,
		&t.LastUsedAt, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

const createAccessToken = `
INSERT INTO access_tokens (company_id, name, key_hash, key_prefix, role, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?)
RETURNING ` + tokenColumns

// CreateAccessTokenParams holds the arguments for CreateAccessToken.
type CreateAccessTokenParams struct {
	CompanyID sql.NullString
	Name      string
	KeyHash   string
	KeyPrefix string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAccessToken inserts a new access token.
func (q *Queries) CreateAccessToken(ctx context.Context, arg CreateAccessTokenParams) (model.AccessToken, error) {
	row := q.db.QueryRowContext(ctx, createAccessToken,
		arg.CompanyID, arg.Name, arg.KeyHash, arg.KeyPrefix, arg.Role,
		arg.CreatedAt, arg.UpdatedAt)
	return scanToken(row)
}

const getAccessTokenByHash = `
SELECT ` + tokenColumns + ` FROM access_tokens WHERE key_hash = ?
`

// GetAccessTokenByHash looks up a token by the SHA-256 hash of its raw key.
func (q *Queries) GetAccessTokenByHash(ctx context.Context, keyHash string) (model.AccessToken, error) {
	return scanToken(q.db.QueryRowContext(ctx, getAccessTokenByHash, keyHash))
}

const updateAccessTokenLastUsed = `
UPDATE access_tokens SET last_used_at = ? WHERE id = ?
`

// UpdateAccessTokenLastUsedParams holds the arguments for UpdateAccessTokenLastUsed.
type UpdateAccessTokenLastUsedParams struct {
	LastUsedAt sql.NullTime
	ID         int64
}

// UpdateAccessTokenLastUsed records when a token was last presented.
func (q *Queries) UpdateAccessTokenLastUsed(ctx context.Context, arg UpdateAccessTokenLastUsedParams) error {
	_, err := q.db.ExecContext(ctx, updateAccessTokenLastUsed, arg.LastUsedAt, arg.ID)
	return err
}
