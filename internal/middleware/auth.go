// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAccessToken is the context key for the authenticated token.
const ContextKeyAccessToken ContextKey = "access_token"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// validateToken parses the Authorization header and resolves the access
// token. On failure it writes the error response and reports that it did.
func validateToken(w http.ResponseWriter, r *http.Request, queries *store.Queries) (*model.AccessToken, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
		return nil, true
	}

	rawKey := parts[1]
	if rawKey == "" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Access token is empty", nil)
		return nil, true
	}

	token, err := queries.GetAccessTokenByHash(r.Context(), model.HashAccessToken(rawKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid access token", nil)
		} else {
			slog.Error("failed to validate access token", "error", err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate access token", nil)
		}
		return nil, true
	}

	if !token.IsActive {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Access token is inactive", nil)
		return nil, true
	}

	return &token, false
}

// TokenAuth creates middleware that validates bearer access tokens and
// attaches the resolved token (company scope + role) to the request
// context.
func TokenAuth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errorWritten := validateToken(w, r, queries)
			if errorWritten {
				return
			}

			touchTokenLastUsed(queries, token.ID)

			ctx := context.WithValue(r.Context(), ContextKeyAccessToken, *token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccessToken retrieves the access token from the request context.
// Returns nil if the request is unauthenticated.
func GetAccessToken(r *http.Request) *model.AccessToken {
	token, ok := r.Context().Value(ContextKeyAccessToken).(model.AccessToken)
	if !ok {
		return nil
	}
	return &token
}

// RequireRole creates middleware that rejects tokens below the minimum
// role. Viewer tokens pass RequireRole(viewer) but fail editor and admin
// guards. Must run after TokenAuth.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetAccessToken(r)
			if token == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Access token required", nil)
				return
			}

			if !model.RoleAtLeast(token.Role, minRole) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient role: "+minRole+" or higher required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEditor rejects viewer tokens; all mutating endpoints use it.
func RequireEditor(next http.Handler) http.Handler {
	return RequireRole(model.RoleEditor)(next)
}

// RequireAdmin allows admin tokens only.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

// RequireServiceToken allows only service-wide tokens (no company scope);
// used for company provisioning.
func RequireServiceToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := GetAccessToken(r)
		if token == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Access token required", nil)
			return
		}
		if !token.IsServiceToken() {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Service token required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// touchTokenLastUsed updates the last used timestamp in a background
// goroutine so the request path never waits on it.
func touchTokenLastUsed(queries *store.Queries, tokenID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queries.UpdateAccessTokenLastUsed(ctx, store.UpdateAccessTokenLastUsedParams{
			LastUsedAt: sql.NullTime{Time: time.Now(), Valid: true},
			ID:         tokenID,
		})
	}()
}
