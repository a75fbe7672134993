// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// Access roles, weakest first. A role grants everything the weaker roles
// grant.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// roleRank orders roles for comparison.
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// IsValidRole reports whether role is a known access role.
func IsValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether role grants at least the min role.
func RoleAtLeast(role, min string) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	m, ok := roleRank[min]
	if !ok {
		return false
	}
	return r >= m
}

// AccessToken represents a bearer credential for the API. A token is scoped
// to one company, except for service tokens (CompanyID invalid) which may
// create companies. The raw token is shown once at creation; only its
// SHA-256 hash is stored.
type AccessToken struct {
	ID         int64          `json:"id"`
	CompanyID  sql.NullString `json:"-"`
	Name       string         `json:"name"`
	KeyHash    string         `json:"-"`
	KeyPrefix  string         `json:"key_prefix"`
	Role       string         `json:"role"`
	LastUsedAt sql.NullTime   `json:"last_used_at,omitempty"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsServiceToken reports whether the token is service-wide rather than
// scoped to a single company.
func (t *AccessToken) IsServiceToken() bool {
	return !t.CompanyID.Valid
}

// GenerateAccessToken generates a new random token. It returns the raw
// token (shown to the caller once) and its prefix kept for identification.
func GenerateAccessToken() (rawKey string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawKey = base64.URLEncoding.EncodeToString(bytes)
	prefix = rawKey[:8]

	return rawKey, prefix, nil
}

// HashAccessToken creates the SHA-256 hash of a raw token for storage and
// lookup.
func HashAccessToken(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
