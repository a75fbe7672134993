// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/crewpage/crewpage-go/internal/middleware"
	"github.com/crewpage/crewpage-go/internal/model"
	"github.com/crewpage/crewpage-go/internal/service"
)

// testDB creates an in-memory SQLite database with the core tables.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE pages (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL UNIQUE,
			published INTEGER NOT NULL DEFAULT 0,
			has_unpublished_changes INTEGER NOT NULL DEFAULT 1,
			seo_title TEXT NOT NULL DEFAULT '',
			seo_description TEXT NOT NULL DEFAULT '',
			scheduled_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
		);

		CREATE TABLE sections (
			id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL,
			type TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1,
			data TEXT NOT NULL DEFAULT '{}',
			published_data TEXT,
			published_position INTEGER,
			published_enabled INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
		);
		CREATE INDEX idx_sections_page_position ON sections(page_id, position);

		CREATE TABLE access_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id TEXT,
			name TEXT NOT NULL,
			key_hash TEXT NOT NULL UNIQUE,
			key_prefix TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			last_used_at DATETIME,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
		);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			company_id TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			ip_address TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSetup creates a test database, API handler and a provisioned company.
func testSetup(t *testing.T) (*sql.DB, *Handler, model.Company) {
	t.Helper()

	db := testDB(t)
	engine := service.NewVersioningService(db)
	companies := service.NewCompanyService(db)

	company, _, err := companies.Create(context.Background(), "Acme Robotics", "")
	if err != nil {
		t.Fatalf("Create company: %v", err)
	}

	return db, NewHandler(db, engine, companies), company
}

// createTestSection inserts a hero section through the engine.
func createTestSection(t *testing.T, db *sql.DB, companyID, title string) model.Section {
	t.Helper()

	engine := service.NewVersioningService(db)
	section, err := engine.CreateSection(context.Background(), companyID, service.CreateSectionInput{
		Type: model.SectionTypeHero,
		Data: json.RawMessage(`{"title":"` + title + `"}`),
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	return section
}

// withToken attaches a company-scoped access token to the request context,
// as TokenAuth would after a successful bearer lookup.
func withToken(r *http.Request, companyID, role string) *http.Request {
	token := model.AccessToken{
		ID:        1,
		CompanyID: sql.NullString{String: companyID, Valid: companyID != ""},
		Name:      "test",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	ctx := context.WithValue(r.Context(), middleware.ContextKeyAccessToken, token)
	return r.WithContext(ctx)
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path string, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// decodeData unmarshals the "data" field of a response body into v.
func decodeData(t *testing.T, body []byte, v any) {
	t.Helper()

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

// publishPage publishes the company's page directly through the engine.
func publishPage(t *testing.T, db *sql.DB, companyID string) {
	t.Helper()

	engine := service.NewVersioningService(db)
	if _, err := engine.Publish(context.Background(), companyID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
